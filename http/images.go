package http

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/amww/loja"
)

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if !loja.IsValidPath(path) {
		h.handleNotFound(w, r)
		return
	}

	content, err := h.images.Get(r.Context(), path)
	if err != nil {
		if errors.Is(err, loja.ErrNotFound) || errors.Is(err, loja.ErrInvalidInput) {
			h.handleNotFound(w, r)
			return
		}
		HandleError(w, r, err)
		return
	}
	defer func() { _ = content.Close() }()

	contentType, etag, err := describeImage(content)
	if err != nil {
		HandleError(w, r, fmt.Errorf("describe image %s: %w", path, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", `"`+etag+`"`)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	http.ServeContent(w, r, path, time.Time{}, content)
}

// describeImage sniffs the content type and hashes the content, leaving the
// reader rewound.
func describeImage(content io.ReadSeeker) (string, string, error) {
	mtype, err := mimetype.DetectReader(content)
	if err != nil {
		return "", "", err
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}

	hash := sha256.New()
	if _, err := io.Copy(hash, content); err != nil {
		return "", "", err
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}

	return mtype.String(), hex.EncodeToString(hash.Sum(nil)), nil
}
