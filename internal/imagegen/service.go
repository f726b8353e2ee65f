// Package imagegen runs the per-request pipeline: resolve the source image,
// call the generator, publish the result.
package imagegen

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"imageproxy/internal/domain"
	"imageproxy/internal/imagesource"
	"imageproxy/internal/storage"
)

// Service wires a Generator, a Publisher and, for URL edits, a Fetcher.
type Service struct {
	gen   Generator
	pub   Publisher
	fetch Fetcher
}

// NewService builds a Service. fetch may be nil when URL edits are not served.
func NewService(gen Generator, pub Publisher, fetch Fetcher) *Service {
	return &Service{gen: gen, pub: pub, fetch: fetch}
}

// Generate creates a new image from prompt and publishes it.
func (s *Service) Generate(ctx context.Context, prompt string) (domain.PublishedResult, error) {
	return s.run(ctx, domain.GenerationRequest{Prompt: prompt})
}

// EditFromURL fetches the image at rawURL and publishes the edited result.
func (s *Service) EditFromURL(ctx context.Context, prompt, rawURL string) (domain.PublishedResult, error) {
	if prompt == "" || rawURL == "" {
		return domain.PublishedResult{}, domain.Invalid("prompt and image_url are required")
	}
	if s.fetch == nil {
		return domain.PublishedResult{}, errors.New("image fetching is not configured")
	}
	log := zerolog.Ctx(ctx)
	log.Info().Str("image_url", rawURL).Msg("fetching source image")
	src, err := s.fetch.Fetch(ctx, rawURL)
	if err != nil {
		return domain.PublishedResult{}, err
	}
	log.Info().Str("mime_type", src.MIMEType).Int("bytes", len(src.Data)).Msg("source image resolved")
	return s.run(ctx, domain.GenerationRequest{Prompt: prompt, Source: &src})
}

// EditFromUpload reads a staged upload and publishes the edited result.
func (s *Service) EditFromUpload(ctx context.Context, prompt string, file domain.StagedFile) (domain.PublishedResult, error) {
	if prompt == "" || file.Path == "" {
		return domain.PublishedResult{}, domain.Invalid("prompt and file are required")
	}
	src, err := imagesource.ReadStaged(file)
	if err != nil {
		return domain.PublishedResult{}, err
	}
	zerolog.Ctx(ctx).Info().
		Str("filename", file.Filename).
		Str("mime_type", src.MIMEType).
		Int("bytes", len(src.Data)).
		Msg("source image resolved")
	return s.run(ctx, domain.GenerationRequest{Prompt: prompt, Source: &src})
}

func (s *Service) run(ctx context.Context, req domain.GenerationRequest) (domain.PublishedResult, error) {
	if req.Prompt == "" {
		return domain.PublishedResult{}, domain.Invalid("prompt is required")
	}
	log := zerolog.Ctx(ctx)
	log.Info().Bool("edit", req.IsEdit()).Int("prompt_len", len(req.Prompt)).Msg("prompt received")

	start := time.Now()
	var (
		img    domain.GeneratedImage
		err    error
		prefix = storage.PrefixGenerated
	)
	if req.IsEdit() {
		prefix = storage.PrefixEdited
		img, err = s.gen.Edit(ctx, req.Prompt, *req.Source)
	} else {
		img, err = s.gen.Generate(ctx, req.Prompt)
	}
	if err != nil {
		return domain.PublishedResult{}, err
	}
	if len(img.Data) == 0 {
		return domain.PublishedResult{}, &domain.NoImageReturnedError{}
	}
	log.Info().
		Str("mime_type", img.MIMEType).
		Int("bytes", len(img.Data)).
		Dur("took", time.Since(start)).
		Msg("generation done")

	log.Info().Str("prefix", prefix).Msg("upload started")
	res, err := s.pub.Publish(ctx, img.Data, prefix)
	if err != nil {
		return domain.PublishedResult{}, err
	}
	log.Info().Str("url", res.URL).Str("public_id", res.PublicID).Msg("image published")
	return res, nil
}
