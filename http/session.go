package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/amww/loja"
)

const accountIDKey = "account_id"

// Session is the signed-in state of a request.
type Session struct {
	Account loja.Account
}

type sessionKey struct{}

// CurrentSession returns the session resolved by SessionMiddleware, or nil
// when the request is anonymous.
func CurrentSession(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func newCookieStore(cfg SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore(cfg.Secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(cfg.MaxAge)
	return store
}

// cookieSession returns the gorilla session of the request. A cookie that
// fails to decode yields a fresh, empty session.
func (h *Handler) cookieSession(r *http.Request) *sessions.Session {
	s, err := h.sessions.Get(r, h.config.Session.Name)
	if err != nil {
		slog.Debug("discarding unreadable session cookie", "err", err)
	}
	return s
}

// SessionMiddleware resolves the account stored in the session cookie and
// attaches it to the request context. The account is re-read on every
// request so a removed account loses access immediately.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := h.cookieSession(r).Values[accountIDKey].(string)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		acc, err := h.identity.Lookup(r.Context(), id)
		if err != nil {
			if !errors.Is(err, loja.ErrNotFound) {
				slog.Warn("resolve session account", "account_id", id, "err", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), &Session{Account: acc})))
	})
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentSession(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// addFlash queues a message for the next rendered listing.
func (h *Handler) addFlash(w http.ResponseWriter, r *http.Request, msg string) {
	s := h.cookieSession(r)
	s.AddFlash(msg)
	if err := s.Save(r, w); err != nil {
		slog.Warn("save flash", "err", err)
	}
}

// takeFlashes pops queued messages. It must run before anything is written
// to w.
func (h *Handler) takeFlashes(w http.ResponseWriter, r *http.Request) []string {
	s := h.cookieSession(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}

	if err := s.Save(r, w); err != nil {
		slog.Warn("clear flashes", "err", err)
	}

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(string); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs
}
