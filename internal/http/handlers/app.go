package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"imageproxy/internal/domain"
	"imageproxy/internal/domain/jsoncfg"
	"imageproxy/internal/infra"
)

// ImageService is the pipeline behind the image routes.
type ImageService interface {
	Generate(ctx context.Context, prompt string) (domain.PublishedResult, error)
	EditFromURL(ctx context.Context, prompt, imageURL string) (domain.PublishedResult, error)
	EditFromUpload(ctx context.Context, prompt string, file domain.StagedFile) (domain.PublishedResult, error)
}

type App struct {
	Images ImageService
	Logger infra.Logger
}

func NewApp(images ImageService, logger infra.Logger) *App {
	return &App{Images: images, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, msg string) {
	a.json(w, status, jsoncfg.ErrorResponse{Error: msg})
}

// fail reports err as 400 when it is a validation failure and 500 otherwise,
// exposing the error message in both cases.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := a.logger(r)
	if domain.IsValidation(err) {
		log.Warn().Err(err).Msg("request rejected")
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Error().Err(err).Msg("request failed")
	a.error(w, http.StatusInternalServerError, err.Error())
}

func (a *App) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

// decodeJSON reads a single JSON document into v. An empty body leaves v
// untouched so the payload's own validation reports the missing fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &tooLarge):
			return domain.Invalid("request body exceeds %d bytes", tooLarge.Limit)
		default:
			return domain.Invalid("invalid JSON payload")
		}
	}
	if dec.More() {
		return domain.Invalid("invalid JSON payload")
	}
	return nil
}

