package imagegen

import (
	"context"

	"imageproxy/internal/domain"
)

// Generator produces a single image from a prompt, optionally transforming a
// source image.
type Generator interface {
	Generate(ctx context.Context, prompt string) (domain.GeneratedImage, error)
	Edit(ctx context.Context, prompt string, src domain.ImageBlob) (domain.GeneratedImage, error)
}

// Fetcher resolves a remote image URL into bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (domain.ImageBlob, error)
}

// Publisher stores the generated bytes and returns their public URL.
type Publisher interface {
	Publish(ctx context.Context, data []byte, prefix string) (domain.PublishedResult, error)
}
