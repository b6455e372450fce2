package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amww/loja"
)

// AccessLog logs one line per request with status, size and duration.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			slog.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type uploadsKey struct{}

// Uploads returns the files buffered by UploadMiddleware keyed by form field.
func Uploads(ctx context.Context) map[string]*loja.Upload {
	u, _ := ctx.Value(uploadsKey{}).(map[string]*loja.Upload)
	return u
}

// errUploadTooLarge marks a file part that exceeded the per-file limit.
var errUploadTooLarge = errors.New("upload too large")

// formOverhead is the room left for non-file fields on top of the file limit.
const formOverhead = 1 << 20

// UploadMiddleware parses the form body. Multipart file parts are read into
// memory, at most maxFileSize bytes each, and their content type is detected
// from the bytes. Empty file parts, as sent by browsers for an untouched
// file input, are skipped.
//
// maxRequestSize caps the whole body, which may carry several files. Values
// below maxFileSize plus the form overhead are raised to it.
func UploadMiddleware(maxFileSize, maxRequestSize int64) func(http.Handler) http.Handler {
	maxRequestSize = max(maxRequestSize, maxFileSize+formOverhead)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

			uploads, err := parseUploads(r, maxFileSize)
			if err != nil {
				var mbe *http.MaxBytesError
				switch {
				case errors.Is(err, errUploadTooLarge):
					writeStatusPage(w, r, http.StatusRequestEntityTooLarge,
						fmt.Sprintf("Arquivo muito grande. O limite por arquivo é de %d KB.", maxFileSize>>10))
				case errors.As(err, &mbe):
					writeStatusPage(w, r, http.StatusRequestEntityTooLarge,
						fmt.Sprintf("Envio muito grande. O limite total é de %d KB.", maxRequestSize>>10))
				default:
					slog.Warn("parse form", "err", err)
					writeStatusPage(w, r, http.StatusBadRequest, "Formulário inválido.")
				}
				return
			}

			ctx := context.WithValue(r.Context(), uploadsKey{}, uploads)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseUploads(r *http.Request, maxSize int64) (map[string]*loja.Upload, error) {
	uploads := make(map[string]*loja.Upload)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return uploads, r.ParseForm()
	}

	if err := r.ParseMultipartForm(maxSize + formOverhead); err != nil {
		return nil, err
	}

	for field, headers := range r.MultipartForm.File {
		if len(headers) == 0 || headers[0].Size == 0 {
			continue
		}

		up, err := readUpload(field, headers[0], maxSize)
		if err != nil {
			return nil, err
		}
		uploads[field] = up
	}

	return uploads, nil
}

func readUpload(field string, fh *multipart.FileHeader, maxSize int64) (*loja.Upload, error) {
	if fh.Size > maxSize {
		return nil, fmt.Errorf("read upload %s: %w", field, errUploadTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", field, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", field, err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("read upload %s: %w", field, errUploadTooLarge)
	}

	contentType := mimetype.Detect(data).String()
	if declared := fh.Header.Get("Content-Type"); declared != "" && strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = declared
	}

	return &loja.Upload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
