// Command api serves the URL-based variant: /edit-image takes a remote image URL.
package main

import (
	"imageproxy/internal/bootstrap"
	"imageproxy/internal/http/httpapi"
)

func main() {
	bootstrap.Run(httpapi.VariantURL)
}
