package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"imageproxy/internal/domain"
)

// S3API is the subset of the S3 client in use.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures S3Publisher.
type S3Options struct {
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

// S3Publisher writes images to an S3 bucket and returns their object URL.
type S3Publisher struct {
	api   S3API
	opts  S3Options
	namer *Namer
}

// NewS3 loads the default AWS credential chain for opts.Region.
func NewS3(ctx context.Context, opts S3Options, namer *Namer) (*S3Publisher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return NewS3WithClient(s3.NewFromConfig(awsCfg), opts, namer), nil
}

// NewS3WithClient wraps an existing client.
func NewS3WithClient(api S3API, opts S3Options, namer *Namer) *S3Publisher {
	if namer == nil {
		namer = NewNamer()
	}
	opts.Prefix = strings.Trim(opts.Prefix, "/")
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &S3Publisher{api: api, opts: opts, namer: namer}
}

// Publish uploads data as <prefix>/<id><ext>.
func (p *S3Publisher) Publish(ctx context.Context, data []byte, prefix string) (domain.PublishedResult, error) {
	id := p.namer.Next(prefix)
	contentType, ext := sniff(data)
	key := id + ext
	if p.opts.Prefix != "" {
		key = path.Join(p.opts.Prefix, key)
	}

	_, err := p.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return domain.PublishedResult{}, &domain.UploadError{PublicID: id, Err: err}
	}
	return domain.PublishedResult{URL: p.objectURL(key), PublicID: id}, nil
}

func (p *S3Publisher) objectURL(key string) string {
	if p.opts.PublicBaseURL != "" {
		return p.opts.PublicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.opts.Bucket, p.opts.Region, key)
}
