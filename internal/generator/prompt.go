package generator

import (
	"fmt"
	"strings"
)

const imageDirective = "Analyze the following product image and use it as the primary source of information for generating the product listing. The user's text input should supplement the image details.\n\n"

const featuresFallback = "Not provided. Rely on product name and image if available."

var descriptionInstructions = map[string]string{
	LengthShort: "Create a short, concise, and punchy product description (around 50-100 words).",
	LengthLong:  "Create a long, detailed, SEO-rich product description that is engaging and persuasive (around 200-300 words).",
}

// BuildPrompt 生成文本指令
func BuildPrompt(r *Request) string {
	features := strings.TrimSpace(r.Features)
	if features == "" {
		features = featuresFallback
	}
	description, ok := descriptionInstructions[r.DescriptionLength]
	if !ok {
		description = descriptionInstructions[LengthLong]
	}

	var b strings.Builder
	b.WriteString("You are an expert e-commerce copywriter specializing in creating high-conversion, SEO-optimized product listings.\n\n")
	b.WriteString("Your task is to generate a complete product listing based on the user's input.\n\n")
	b.WriteString("**Product Details:**\n")
	fmt.Fprintf(&b, "*   **Name:** %s\n", r.ProductName)
	fmt.Fprintf(&b, "*   **Key Features/Description:** %s\n\n", features)
	b.WriteString("**Listing Requirements:**\n")
	fmt.Fprintf(&b, "*   **Platform:** %s\n", r.Template)
	fmt.Fprintf(&b, "*   **Tone of Voice:** %s\n", r.Tone)
	fmt.Fprintf(&b, "*   **Language:** %s\n\n", r.Language)
	b.WriteString("**IMPORTANT INSTRUCTIONS:**\n")
	b.WriteString("1.  Generate 5-10 high-click-through product titles.\n")
	fmt.Fprintf(&b, "2.  %s\n", description)
	b.WriteString("3.  Write 3-5 key feature bullet points, formatted appropriately for the selected platform. (e.g., Amazon bullets are benefit-driven).\n")
	b.WriteString("4.  List highly searched SEO keywords and meta tags relevant to the product.\n")
	b.WriteString("5.  You MUST provide the output in a valid JSON format. Do not include any text, markdown, or code block syntax outside of the JSON object. The JSON object must be the only thing you output.\n")
	return b.String()
}
