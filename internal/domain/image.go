package domain

// ImageBlob is a source image handed to the generator, either fetched from a URL
// or read from an uploaded file.
type ImageBlob struct {
	Data     []byte
	MIMEType string
}

// GenerationRequest is built from the inbound payload and consumed once.
type GenerationRequest struct {
	Prompt string
	Source *ImageBlob
}

// IsEdit reports whether the request carries a source image.
func (r GenerationRequest) IsEdit() bool {
	return r.Source != nil
}

// GeneratedImage holds the bytes of the first inline image returned by the model.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// PublishedResult is what the storage backend hands back after an upload.
type PublishedResult struct {
	URL      string
	PublicID string
}

// StagedFile is a multipart upload copied to local disk for the lifetime of a
// single request.
type StagedFile struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}
