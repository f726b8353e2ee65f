package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks a request that is missing a required field or is
// otherwise malformed. It is the only error reported as 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid returns a ValidationError with the given message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// FetchError is returned when a remote source image could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch image: remote returned status %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch image: %v", e.Err)
	}
	return "failed to fetch image"
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnsupportedMediaError is returned when the fetched resource is not an image.
type UnsupportedMediaError struct {
	ContentType string
}

func (e *UnsupportedMediaError) Error() string {
	if e.ContentType == "" {
		return "URL does not point to an image: missing content-type"
	}
	return fmt.Sprintf("URL does not point to an image: content-type %q", e.ContentType)
}

// NoImageReturnedError is returned when the model response has no inline image part.
type NoImageReturnedError struct {
	FinishReason string
}

func (e *NoImageReturnedError) Error() string {
	if e.FinishReason != "" {
		return fmt.Sprintf("no image returned by the model (finish reason: %s)", e.FinishReason)
	}
	return "no image returned by the model"
}

// GenerationError wraps a failed call to the generative backend.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("image generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UploadError wraps a storage backend rejection.
type UploadError struct {
	PublicID string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
