// Package gemini sends generate and edit requests to a Gemini image model and
// extracts the first inline image from the reply.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"imageproxy/internal/domain"
)

// DefaultModel is used when Options.Model is empty.
const DefaultModel = "gemini-2.5-flash-image"

// ContentGenerator is the subset of *genai.Models the client depends on.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Client wraps the generative SDK. It is safe for concurrent use.
type Client struct {
	models ContentGenerator
	model  string
}

// NewClient builds an SDK-backed client against the Gemini API backend.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return New(sdk.Models, opts.Model), nil
}

// New wraps an existing generator, typically sdk.Models or a test double.
func New(models ContentGenerator, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: models, model: model}
}

// Model returns the configured model id.
func (c *Client) Model() string { return c.model }

// Generate asks the model for an image described by prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (domain.GeneratedImage, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	return c.call(ctx, parts)
}

// Edit asks the model to transform src according to prompt. The prompt part
// always precedes the image part.
func (c *Client) Edit(ctx context.Context, prompt string, src domain.ImageBlob) (domain.GeneratedImage, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(src.Data, src.MIMEType),
	}
	return c.call(ctx, parts)
}

func (c *Client) call(ctx context.Context, parts []*genai.Part) (domain.GeneratedImage, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	zerolog.Ctx(ctx).Debug().
		Str("model", c.model).
		Int("parts", len(parts)).
		Msg("calling generative model")

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return domain.GeneratedImage{}, &domain.GenerationError{Err: err}
	}
	return FirstInlineImage(resp)
}

// FirstInlineImage returns the first part of the first candidate that carries
// non-empty inline data. Text parts are ignored.
func FirstInlineImage(resp *genai.GenerateContentResponse) (domain.GeneratedImage, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		reason := ""
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason = string(resp.PromptFeedback.BlockReason)
		}
		return domain.GeneratedImage{}, &domain.NoImageReturnedError{FinishReason: reason}
	}

	cand := resp.Candidates[0]
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return domain.GeneratedImage{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			}, nil
		}
	}

	reason := ""
	if cand.FinishReason != "" && cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
		reason = string(cand.FinishReason)
	}
	return domain.GeneratedImage{}, &domain.NoImageReturnedError{FinishReason: reason}
}
