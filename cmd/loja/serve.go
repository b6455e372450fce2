package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amww/loja"
	"github.com/amww/loja/config"
	lojahttp "github.com/amww/loja/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the loja HTTP server. SIGINT and SIGTERM trigger a graceful shutdown.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 3000, "HTTP server port (env: LOJA_SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if cfg.Auth.Admin.Enabled() {
		if err := bootstrapAdmin(ctx, a.identity, cfg.Auth.Admin.Email, cfg.Auth.Admin.Password); err != nil {
			return err
		}
	}

	secret, err := sessionSecret(cfg.Session.Secret)
	if err != nil {
		return err
	}

	handler, err := lojahttp.NewHandler(&lojahttp.HandlerConfig{
		Session: lojahttp.SessionConfig{
			Name:   cfg.Session.Name,
			Secret: secret,
			MaxAge: cfg.Session.MaxAge,
			Secure: cfg.Session.Secure,
		},
		ProtectWrites:  cfg.Auth.ProtectWrites,
		MaxUploadSize:  cfg.Server.MaxUploadSize,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		PublicPath:     cfg.Storage.PublicPath,
		CORS:           cfg.CORS,
	}, a.catalog, a.identity, a.store, a.db)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"protect_writes", cfg.Auth.ProtectWrites,
		"public_path", cfg.Storage.PublicPath,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// bootstrapAdmin creates the configured admin account unless it exists.
func bootstrapAdmin(ctx context.Context, identity *loja.Identity, email, password string) error {
	acc, err := identity.CreateAccount(ctx, email, password)
	if err != nil {
		if errors.Is(err, loja.ErrAlreadyExists) {
			slog.Debug("admin account already exists", "email", email)
			return nil
		}
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	slog.Info("admin account created", "account_id", acc.ID, "email", acc.Email)
	return nil
}

// sessionSecret returns the configured secret, or a random one when unset.
func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}

	slog.Warn("session.secret is not set; using a random key, sessions end when the server restarts")
	return secret, nil
}
