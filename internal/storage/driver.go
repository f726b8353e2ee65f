package storage

import (
	"context"
	"fmt"

	"imageproxy/internal/infra"
)

// NewFromConfig builds the Publisher selected by cfg.StorageDriver.
func NewFromConfig(ctx context.Context, cfg *infra.Config) (Publisher, error) {
	namer := NewNamer()
	switch cfg.StorageDriver {
	case infra.StorageCloudinary:
		p, err := NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder, namer)
		if err != nil {
			return nil, err
		}
		return p, nil
	case infra.StorageS3:
		p, err := NewS3(ctx, S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		}, namer)
		if err != nil {
			return nil, err
		}
		return p, nil
	case infra.StorageFilesystem:
		p, err := NewFileStore(cfg.StoragePath, cfg.StorageBaseURL, namer)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.StorageDriver)
	}
}
