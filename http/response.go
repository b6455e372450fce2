package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/amww/loja"
)

// Messages shown to users. Internal error text is logged, never rendered.
const (
	msgNotFound           = "Produto não encontrado."
	msgInvalidInput       = "Dados inválidos. Verifique os campos e tente novamente."
	msgInvalidCredentials = "Credenciais inválidas"
	msgAlreadyExists      = "Já existe uma conta com este e-mail."
	msgUnauthorized       = "Faça login para continuar."
	msgImageUpload        = "O produto foi salvo, mas a imagem não pôde ser enviada."
	msgInternal           = "Erro interno. Tente novamente mais tarde."
)

// ErrorStatus maps a domain error to an HTTP status and a user-facing message.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, loja.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, loja.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, loja.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput
	case errors.Is(err, loja.ErrAlreadyExists):
		return http.StatusConflict, msgAlreadyExists
	case errors.Is(err, loja.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, loja.ErrImageUpload):
		return http.StatusBadGateway, msgImageUpload
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// logError logs err at a level matching its status.
func logError(r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request error", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
		return
	}
	slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
}

// HandleError logs err and renders the error page for it.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := ErrorStatus(err)
	logError(r, status, err)
	writeStatusPage(w, r, status, msg)
}
