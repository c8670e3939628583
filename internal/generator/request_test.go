package generator

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *Request {
	return &Request{
		ProductName:       "Handloom Cotton Saree",
		Features:          "Pure cotton, hand woven, 6.3m with blouse piece",
		Template:          TemplateAmazon,
		Tone:              ToneProfessional,
		Language:          LanguageEnglish,
		DescriptionLength: LengthShort,
	}
}

func TestDecodeDataURL(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}

	t.Run("png", func(t *testing.T) {
		img, err := DecodeDataURL("data:image/png;base64," + base64.StdEncoding.EncodeToString(payload))
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIMEType)
		assert.Equal(t, payload, img.Data)
	})

	tests := []struct {
		name string
		in   string
	}{
		{"no header", base64.StdEncoding.EncodeToString(payload)},
		{"not an image", "data:text/plain;base64," + base64.StdEncoding.EncodeToString(payload)},
		{"bad base64", "data:image/jpeg;base64,***"},
		{"empty payload", "data:image/jpeg;base64,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeDataURL(tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, img)
		})
	}
}

func TestRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := validRequest()
		r.ProductName = "  Saree  "
		require.NoError(t, r.Validate())
		assert.Equal(t, "Saree", r.ProductName)
	})

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"blank product name", func(r *Request) { r.ProductName = "   " }},
		{"unknown template", func(r *Request) { r.Template = "eBay" }},
		{"unknown tone", func(r *Request) { r.Tone = "Angry" }},
		{"unknown language", func(r *Request) { r.Language = "French" }},
		{"unknown length", func(r *Request) { r.DescriptionLength = "Medium" }},
		{"non image mime", func(r *Request) { r.Image = &Image{MIMEType: "text/plain", Data: []byte("x")} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("embeds request fields", func(t *testing.T) {
		p := BuildPrompt(validRequest())
		assert.Contains(t, p, "**Name:** Handloom Cotton Saree")
		assert.Contains(t, p, "Pure cotton, hand woven")
		assert.Contains(t, p, "**Platform:** Amazon")
		assert.Contains(t, p, "**Tone of Voice:** Professional")
		assert.Contains(t, p, "**Language:** English")
		assert.Contains(t, p, "around 50-100 words")
		assert.Contains(t, p, "Generate 5-10 high-click-through product titles")
		assert.Contains(t, p, "valid JSON format")
	})

	t.Run("long description and missing features", func(t *testing.T) {
		r := validRequest()
		r.Features = ""
		r.DescriptionLength = LengthLong
		p := BuildPrompt(r)
		assert.Contains(t, p, featuresFallback)
		assert.Contains(t, p, "around 200-300 words")
		assert.NotContains(t, p, "50-100 words")
	})
}
