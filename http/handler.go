package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/amww/loja"
)

// Catalog is the product workflow the handlers drive.
type Catalog interface {
	All(ctx context.Context) ([]loja.Product, error)
	Page(ctx context.Context, number int) (loja.Page, error)
	Get(ctx context.Context, id uuid.UUID) (loja.Product, error)
	Create(ctx context.Context, in loja.ProductInput, img *loja.Upload) (loja.Product, error)
	Update(ctx context.Context, id uuid.UUID, in loja.ProductInput, img *loja.Upload) (loja.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkUpdate(ctx context.Context, items []loja.BulkItem) loja.BulkResult
}

// Identity checks credentials and resolves session accounts.
type Identity interface {
	SignIn(ctx context.Context, email, password string) (loja.Account, error)
	CreateAccount(ctx context.Context, email, password string) (loja.Account, error)
	Lookup(ctx context.Context, id uuid.UUID) (loja.Account, error)
}

// ImageSource serves stored image bytes.
type ImageSource interface {
	Get(ctx context.Context, path string) (io.ReadSeekCloser, error)
}

// Pinger reports backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	Name   string
	Secret []byte
	MaxAge int
	Secure bool
}

type HandlerConfig struct {
	Session       SessionConfig
	ProtectWrites bool
	MaxUploadSize int64
	// MaxRequestSize caps an inline bulk edit body, which carries one
	// optional image per product.
	MaxRequestSize int64
	PublicPath    string
	CORS          CORSConfig
}

// Handler serves the store frontend and the catalog admin pages.
type Handler struct {
	config   HandlerConfig
	catalog  Catalog
	identity Identity
	images   ImageSource
	health   Pinger
	sessions sessions.Store
}

// NewHandler creates a Handler. health may be nil, in which case /healthz
// always reports ok.
func NewHandler(config *HandlerConfig, catalog Catalog, identity Identity, images ImageSource, health Pinger) (*Handler, error) {
	if catalog == nil || identity == nil || images == nil {
		return nil, errors.New("new handler: catalog, identity and images are required")
	}
	if len(config.Session.Secret) < 32 {
		return nil, errors.New("new handler: session secret must be at least 32 bytes")
	}

	cfg := *config
	if cfg.Session.Name == "" {
		cfg.Session.Name = "loja_session"
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 5 << 20
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = 32 << 20
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = "/imagens"
	}
	if !strings.HasPrefix(cfg.PublicPath, "/") {
		return nil, errors.New("new handler: public path must start with /")
	}
	cfg.PublicPath = strings.TrimSuffix(cfg.PublicPath, "/")

	return &Handler{
		config:   cfg,
		catalog:  catalog,
		identity: identity,
		images:   images,
		health:   health,
		sessions: newCookieStore(cfg.Session),
	}, nil
}

// Router returns an http.Handler with every route of the store mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(h.handleMethodNotAllowed)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/static/*", staticHandler())
	r.Get(h.config.PublicPath+"/*", h.handleImage)

	r.Group(func(r chi.Router) {
		r.Use(h.SessionMiddleware)

		r.Get("/", h.handleHome)
		r.Get("/home", h.handleHome)
		r.Get("/login", h.handleLoginForm)
		r.Post("/login", h.handleLogin)
		r.Get("/logout", h.handleLogout)
		r.Get("/produtos", h.handleProducts)

		r.Group(func(r chi.Router) {
			if h.config.ProtectWrites {
				r.Use(RequireLogin)
			}

			r.Get("/cadastro-produtos", h.handleCreateForm)
			r.Get("/editar-produto/{id}", h.handleEditForm)
			r.Get("/settings", h.handleSettingsForm)
			r.Post("/excluir-produto/{id}", h.handleDelete)
			r.Post("/settings", h.handleSettings)

			r.Group(func(r chi.Router) {
				r.Use(UploadMiddleware(h.config.MaxUploadSize, 0))
				r.Post("/cadastro-produtos", h.handleCreate)
				r.Post("/editar-produto/{id}", h.handleEdit)
			})

			r.With(UploadMiddleware(h.config.MaxUploadSize, h.config.MaxRequestSize)).
				Post("/editar-produto-inline", h.handleBulkEdit)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.health.Ping(ctx); err != nil {
			slog.Error("health check failed", "err", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}
