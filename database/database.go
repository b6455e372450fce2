package database

import (
	"context"
	"fmt"

	"github.com/amww/loja"
	"github.com/amww/loja/database/postgres"
	"github.com/amww/loja/database/sqlite"
)

// Config holds the configuration for connecting to a document store backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn" validate:"required"`
	// AutoMigrate creates missing tables when the database is opened
	AutoMigrate bool `mapstructure:"auto_migrate"`
	// Tables holds the product and account table names
	Tables loja.Tables `mapstructure:"tables"`
}

// Database is the interface implemented by every backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	Products() loja.ProductRepo
	Accounts() loja.AccountRepo
	Close() error
}

// Connect opens the configured backend. It does not migrate or validate the
// schema; call Migrate and Validate as needed.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	switch cfg.Type {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("connect: unsupported database type: %s", cfg.Type)
	}
}

// Open connects and prepares the schema: tables are created when
// cfg.AutoMigrate is set and the schema is always validated.
func Open(ctx context.Context, cfg Config) (Database, error) {
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: ping: %w", cfg.Type, err)
	}

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
		}
	}

	if err := db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", cfg.Type, err)
	}

	return db, nil
}
