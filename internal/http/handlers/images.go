package handlers

import (
	"net/http"

	"imageproxy/internal/domain"
	"imageproxy/internal/domain/jsoncfg"
	"imageproxy/internal/middleware"
)

// GenerateImage handles POST /generate-image.
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req jsoncfg.GeneratePayload
	if err := decodeJSON(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.Images.Generate(r.Context(), req.Prompt)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, jsoncfg.MessageResponse{Message: jsoncfg.MessageGenerated, URL: res.URL})
}

// EditImageFromURL handles POST /edit-image for the URL variant.
func (a *App) EditImageFromURL(w http.ResponseWriter, r *http.Request) {
	var req jsoncfg.EditURLPayload
	if err := decodeJSON(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.Images.EditFromURL(r.Context(), req.Prompt, req.ImageURL)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, jsoncfg.MessageResponse{Message: jsoncfg.MessageEdited, URL: res.URL})
}

// EditImageFromUpload handles POST /edit-image for the upload variant. The
// file must already be staged by middleware.StageUpload.
func (a *App) EditImageFromUpload(w http.ResponseWriter, r *http.Request) {
	prompt := jsoncfg.NormalizePrompt(r.FormValue("prompt"))
	file, hasFile := middleware.StagedFileFromContext(r.Context())
	switch {
	case prompt == "" && !hasFile:
		a.fail(w, r, domain.Invalid("prompt and file are required"))
		return
	case prompt == "":
		a.fail(w, r, domain.Invalid("prompt is required"))
		return
	case !hasFile:
		a.fail(w, r, domain.Invalid("file is required"))
		return
	}

	res, err := a.Images.EditFromUpload(r.Context(), prompt, file)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, jsoncfg.MessageResponse{Message: jsoncfg.MessageEdited, URL: res.URL})
}
