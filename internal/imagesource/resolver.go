// Package imagesource turns a user-supplied image reference into raw bytes:
// remote URLs (Drive share links included) for the URL variant and staged
// uploads for the upload variant.
package imagesource

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"imageproxy/internal/domain"
)

var driveViewPattern = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)/`)

// Normalize rewrites a Google Drive viewer link into its direct-download form.
// Any other URL is returned unchanged.
func Normalize(rawURL string) string {
	m := driveViewPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return rawURL
	}
	return "https://drive.google.com/uc?export=download&id=" + m[1]
}

// Fetcher downloads source images over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher using client, or a client bounded by timeout
// when client is nil.
func NewFetcher(client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{client: client}
}

// Fetch GETs rawURL after normalization and returns the body with its declared
// image MIME type.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.ImageBlob, error) {
	target := Normalize(strings.TrimSpace(rawURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.ImageBlob{}, &domain.FetchError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.ImageBlob{}, &domain.FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return domain.ImageBlob{}, &domain.FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	mimeType, ok := imageMediaType(resp.Header.Get("Content-Type"))
	if !ok {
		return domain.ImageBlob{}, &domain.UnsupportedMediaError{ContentType: resp.Header.Get("Content-Type")}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ImageBlob{}, &domain.FetchError{URL: target, Err: err}
	}
	return domain.ImageBlob{Data: data, MIMEType: mimeType}, nil
}

// ReadStaged loads an upload staged on disk. The part's declared content type
// wins; a missing or generic one falls back to sniffing the bytes.
func ReadStaged(file domain.StagedFile) (domain.ImageBlob, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return domain.ImageBlob{}, fmt.Errorf("read staged upload: %w", err)
	}
	mimeType := mediaType(file.ContentType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mediaType(http.DetectContentType(data))
	}
	return domain.ImageBlob{Data: data, MIMEType: mimeType}, nil
}

func imageMediaType(header string) (string, bool) {
	mt := mediaType(header)
	if !strings.HasPrefix(mt, "image/") {
		return "", false
	}
	return mt, true
}

func mediaType(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		mt, _, _ = strings.Cut(header, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
