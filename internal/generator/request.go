package generator

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// 平台模板
const (
	TemplateAmazon           = "Amazon"
	TemplateMeesho           = "Meesho"
	TemplateFlipkart         = "Flipkart"
	TemplateShopify          = "Shopify"
	TemplateInstagramCaption = "Instagram Caption"
	TemplateWebsite          = "Website Product Page"
)

// 语气
const (
	ToneProfessional = "Professional"
	ToneMinimal      = "Minimal"
	ToneLuxury       = "Luxury"
	ToneStorytelling = "Storytelling"
	ToneGenZViral    = "Gen-Z Viral"
	ToneSalesBooster = "Sales Booster"
)

const (
	LanguageEnglish  = "English"
	LanguageHindi    = "Hindi"
	LanguageHinglish = "Hinglish"
)

const (
	LengthShort = "Short"
	LengthLong  = "Long"
)

var (
	Templates = []string{TemplateAmazon, TemplateMeesho, TemplateFlipkart, TemplateShopify, TemplateInstagramCaption, TemplateWebsite}
	Tones     = []string{ToneProfessional, ToneMinimal, ToneLuxury, ToneStorytelling, ToneGenZViral, ToneSalesBooster}
	Languages = []string{LanguageEnglish, LanguageHindi, LanguageHinglish}
	Lengths   = []string{LengthShort, LengthLong}
)

var dataURLPattern = regexp.MustCompile(`^data:(image/\w+);base64,`)

// Image 已解码的商品图片
type Image struct {
	MIMEType string
	Data     []byte
}

// Request 一次生成请求
type Request struct {
	ProductName       string
	Features          string
	Template          string
	Tone              string
	Language          string
	DescriptionLength string
	Image             *Image
}

// DecodeDataURL 解析 data:image/<type>;base64,<payload>
func DecodeDataURL(dataURL string) (*Image, error) {
	m := dataURLPattern.FindStringSubmatch(dataURL)
	if m == nil {
		return nil, fmt.Errorf("%w: invalid image format, could not determine MIME type", ErrInvalidInput)
	}
	data, err := base64.StdEncoding.DecodeString(dataURL[len(m[0]):])
	if err != nil {
		return nil, fmt.Errorf("%w: image is not valid base64", ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	return &Image{MIMEType: m[1], Data: data}, nil
}

// Validate 在调用模型前校验请求
func (r *Request) Validate() error {
	r.ProductName = strings.TrimSpace(r.ProductName)
	if r.ProductName == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	checks := []struct {
		field string
		value string
		set   []string
	}{
		{"template", r.Template, Templates},
		{"tone", r.Tone, Tones},
		{"language", r.Language, Languages},
		{"description length", r.DescriptionLength, Lengths},
	}
	for _, c := range checks {
		if !contains(c.set, c.value) {
			return fmt.Errorf("%w: unknown %s %q", ErrInvalidInput, c.field, c.value)
		}
	}
	if r.Image != nil && (!strings.HasPrefix(r.Image.MIMEType, "image/") || len(r.Image.Data) == 0) {
		return fmt.Errorf("%w: unsupported image", ErrInvalidInput)
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
