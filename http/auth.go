package http

import (
	"fmt"
	"log/slog"
	"net/http"
)

func (h *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if CurrentSession(r.Context()) != nil {
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}
	render(w, r, http.StatusOK, "login", viewData{Title: "Entrar"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")

	acc, err := h.identity.SignIn(r.Context(), email, r.PostFormValue("senha"))
	if err != nil {
		status, msg := ErrorStatus(err)
		logError(r, status, err)
		render(w, r, status, "login", viewData{Title: "Entrar", Error: msg, Email: email})
		return
	}

	s := h.cookieSession(r)
	s.Values[accountIDKey] = acc.ID.String()
	if err := s.Save(r, w); err != nil {
		HandleError(w, r, fmt.Errorf("save session: %w", err))
		return
	}

	slog.Info("signed in", "account_id", acc.ID)
	http.Redirect(w, r, "/home", http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	s := h.cookieSession(r)
	delete(s.Values, accountIDKey)
	s.Options.MaxAge = -1

	if err := s.Save(r, w); err != nil {
		HandleError(w, r, fmt.Errorf("clear session: %w", err))
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "settings", viewData{Title: "Configurações"})
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")

	acc, err := h.identity.CreateAccount(r.Context(), email, r.PostFormValue("senha"))
	if err != nil {
		status, msg := ErrorStatus(err)
		logError(r, status, err)
		render(w, r, status, "settings", viewData{Title: "Configurações", Error: msg, Email: email})
		return
	}

	slog.Info("account created", "account_id", acc.ID)
	render(w, r, http.StatusOK, "settings", viewData{
		Title:   "Configurações",
		Success: fmt.Sprintf("Conta criada para %s.", acc.Email),
	})
}
