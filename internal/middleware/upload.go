package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"imageproxy/internal/domain"
)

// UploadOptions configures StageUpload.
type UploadOptions struct {
	// Dir receives staged files. Empty means os.TempDir().
	Dir string
	// Field is the multipart field holding the file.
	Field string
	// MaxBytes caps the whole multipart body.
	MaxBytes int64
	// MaxMemory is passed to ParseMultipartForm; parts above it spill to disk.
	MaxMemory int64
}

const defaultMultipartMemory = 1 << 20

// StageUpload parses multipart bodies, copies the configured file field into
// Dir and exposes it through StagedFileFromContext. Staged files and any
// temporary parts created by the multipart parser are removed once the
// downstream handler returns, whether it succeeded, failed or panicked.
// Requests that are not multipart pass through untouched.
func StageUpload(opts UploadOptions) func(http.Handler) http.Handler {
	if opts.Field == "" {
		opts.Field = "file"
	}
	if opts.MaxMemory <= 0 {
		opts.MaxMemory = defaultMultipartMemory
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMultipart(r) {
				next.ServeHTTP(w, r)
				return
			}
			if opts.MaxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBytes)
			}
			if err := r.ParseMultipartForm(opts.MaxMemory); err != nil {
				removeForm(r)
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) || (opts.MaxBytes > 0 && r.ContentLength > opts.MaxBytes) {
					writeError(w, http.StatusBadRequest, fmt.Sprintf("upload exceeds %d bytes", opts.MaxBytes))
					return
				}
				writeError(w, http.StatusBadRequest, "invalid multipart payload")
				return
			}
			defer removeForm(r)

			file, header, err := r.FormFile(opts.Field)
			if errors.Is(err, http.ErrMissingFile) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid file upload")
				return
			}
			staged, err := stageFile(opts.Dir, file, header)
			_ = file.Close()
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to stage upload")
				writeError(w, http.StatusInternalServerError, "failed to stage upload")
				return
			}
			defer func() {
				if err := os.Remove(staged.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
					zerolog.Ctx(r.Context()).Warn().Err(err).Str("path", staged.Path).Msg("failed to remove staged upload")
				}
			}()

			ctx := context.WithValue(r.Context(), stagedFileKey, staged)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StagedFileFromContext returns the upload staged by StageUpload, if any.
func StagedFileFromContext(ctx context.Context) (domain.StagedFile, bool) {
	v, ok := ctx.Value(stagedFileKey).(domain.StagedFile)
	return v, ok
}

// WithStagedFile stores f on ctx.
func WithStagedFile(ctx context.Context, f domain.StagedFile) context.Context {
	return context.WithValue(ctx, stagedFileKey, f)
}

func stageFile(dir string, src multipart.File, header *multipart.FileHeader) (domain.StagedFile, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.StagedFile{}, fmt.Errorf("ensure upload dir: %w", err)
	}
	dst, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return domain.StagedFile{}, fmt.Errorf("create staged file: %w", err)
	}
	n, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(dst.Name())
		return domain.StagedFile{}, fmt.Errorf("write staged file: %w", errors.Join(copyErr, closeErr))
	}
	return domain.StagedFile{
		Path:        dst.Name(),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        n,
	}, nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.EqualFold(mediaType, "multipart/form-data")
}

func removeForm(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
