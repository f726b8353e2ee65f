package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"imageproxy/internal/domain"
)

// FileStore persists images onto the local filesystem and serves them from
// baseURL. It is intended for development and test environments where no
// object storage service is available.
type FileStore struct {
	basePath string
	baseURL  string
	namer    *Namer
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath, baseURL string, namer *Namer) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	if namer == nil {
		namer = NewNamer()
	}
	return &FileStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/"), namer: namer}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Publish writes data under a fresh identifier and returns its URL below baseURL.
func (s *FileStore) Publish(ctx context.Context, data []byte, prefix string) (domain.PublishedResult, error) {
	if s == nil {
		return domain.PublishedResult{}, errors.New("storage: no store configured")
	}
	id := s.namer.Next(prefix)
	_, ext := sniff(data)
	key, err := s.Write(ctx, id+ext, data)
	if err != nil {
		return domain.PublishedResult{}, &domain.UploadError{PublicID: id, Err: err}
	}
	return domain.PublishedResult{URL: s.baseURL + "/" + key, PublicID: id}, nil
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
