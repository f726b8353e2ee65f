package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"imageproxy/internal/domain"
)

// CloudinaryUploader is the subset of the Cloudinary upload API in use.
type CloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryPublisher stores images as Cloudinary image resources.
type CloudinaryPublisher struct {
	upload CloudinaryUploader
	folder string
	namer  *Namer
}

// NewCloudinary builds a publisher from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string, namer *Namer) (*CloudinaryPublisher, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: init cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return NewCloudinaryWithUploader(&cld.Upload, folder, namer), nil
}

// NewCloudinaryWithUploader wraps an existing uploader.
func NewCloudinaryWithUploader(up CloudinaryUploader, folder string, namer *Namer) *CloudinaryPublisher {
	if namer == nil {
		namer = NewNamer()
	}
	return &CloudinaryPublisher{upload: up, folder: folder, namer: namer}
}

// Publish uploads data and returns the secure delivery URL.
func (p *CloudinaryPublisher) Publish(ctx context.Context, data []byte, prefix string) (domain.PublishedResult, error) {
	id := p.namer.Next(prefix)
	res, err := p.upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     id,
		Folder:       p.folder,
		ResourceType: "image",
	})
	if err != nil {
		return domain.PublishedResult{}, &domain.UploadError{PublicID: id, Err: err}
	}
	if res == nil {
		return domain.PublishedResult{}, &domain.UploadError{PublicID: id, Err: errors.New("empty response from cloudinary")}
	}
	if res.Error.Message != "" {
		return domain.PublishedResult{}, &domain.UploadError{PublicID: id, Err: errors.New(res.Error.Message)}
	}
	if res.SecureURL == "" {
		return domain.PublishedResult{}, &domain.UploadError{PublicID: id, Err: errors.New("cloudinary returned no secure_url")}
	}
	publicID := res.PublicID
	if publicID == "" {
		publicID = id
	}
	return domain.PublishedResult{URL: res.SecureURL, PublicID: publicID}, nil
}
