package jsoncfg

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"imageproxy/internal/domain"
)

// GeneratePayload is the JSON body accepted by /generate-image.
type GeneratePayload struct {
	Prompt string `json:"prompt"`
}

// EditURLPayload is the JSON body accepted by /edit-image on the URL variant.
type EditURLPayload struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url"`
}

// MessageResponse is returned on success by every image route.
type MessageResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// ErrorResponse is returned on any failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	MessageGenerated = "Image generated"
	MessageEdited    = "Image edited"
)

// NormalizePrompt trims surrounding whitespace and converts the prompt to NFC so
// visually identical prompts reach the model as the same byte sequence.
func NormalizePrompt(prompt string) string {
	return norm.NFC.String(strings.TrimSpace(prompt))
}

// Normalize cleans the payload in place.
func (p *GeneratePayload) Normalize() {
	if p == nil {
		return
	}
	p.Prompt = NormalizePrompt(p.Prompt)
}

// Validate ensures the payload carries a prompt.
func (p GeneratePayload) Validate() error {
	if p.Prompt == "" {
		return domain.Invalid("prompt is required")
	}
	return nil
}

// Normalize cleans the payload in place.
func (p *EditURLPayload) Normalize() {
	if p == nil {
		return
	}
	p.Prompt = NormalizePrompt(p.Prompt)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
}

// Validate ensures both the prompt and the image URL are present.
func (p EditURLPayload) Validate() error {
	if p.Prompt == "" && p.ImageURL == "" {
		return domain.Invalid("prompt and image_url are required")
	}
	if p.Prompt == "" {
		return domain.Invalid("prompt is required")
	}
	if p.ImageURL == "" {
		return domain.Invalid("image_url is required")
	}
	return nil
}
