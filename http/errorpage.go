package http

import (
	"net/http"
)

func writeStatusPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render(w, r, status, "error", viewData{
		Title: http.StatusText(status),
		Error: message,
	})
}

func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeStatusPage(w, r, http.StatusNotFound, "Página não encontrada.")
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeStatusPage(w, r, http.StatusMethodNotAllowed, "Método não permitido.")
}
