package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"imageproxy/internal/http/handlers"
	"imageproxy/internal/middleware"
)

// Variant selects how /edit-image receives its source image.
type Variant int

const (
	// VariantURL accepts JSON {prompt, image_url}.
	VariantURL Variant = iota
	// VariantUpload accepts multipart {prompt, file}.
	VariantUpload
)

func (v Variant) String() string {
	if v == VariantUpload {
		return "upload"
	}
	return "url"
}

// Options configures NewRouter.
type Options struct {
	Variant          Variant
	Logger           zerolog.Logger
	AllowedOrigins   []string
	MaxJSONBodyBytes int64
	Upload           middleware.UploadOptions
	// StaticDir is served under StaticPrefix when set, for the filesystem
	// storage driver.
	StaticDir    string
	StaticPrefix string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/healthz", app.Health)

	r.With(middleware.BodyLimit(opts.MaxJSONBodyBytes)).Post("/generate-image", app.GenerateImage)

	switch opts.Variant {
	case VariantUpload:
		r.With(middleware.StageUpload(opts.Upload)).Post("/edit-image", app.EditImageFromUpload)
	default:
		r.With(middleware.BodyLimit(opts.MaxJSONBodyBytes)).Post("/edit-image", app.EditImageFromURL)
	}

	if trimmed := strings.Trim(opts.StaticPrefix, "/"); opts.StaticDir != "" && trimmed != "" {
		prefix := "/" + trimmed
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(opts.StaticDir))))
	}

	return r
}
