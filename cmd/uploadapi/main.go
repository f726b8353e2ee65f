// Command uploadapi serves the upload-based variant: /edit-image takes a
// multipart file.
package main

import (
	"imageproxy/internal/bootstrap"
	"imageproxy/internal/http/httpapi"
)

func main() {
	bootstrap.Run(httpapi.VariantUpload)
}
