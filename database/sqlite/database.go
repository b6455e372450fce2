package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/amww/loja"

	_ "modernc.org/sqlite" // SQLite driver
)

// database provides SQLite database operations.
type database struct {
	db     *sql.DB
	tables loja.Tables
}

// Connect opens a SQLite database.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables loja.Tables) (*database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	// A single connection serialises writers and keeps a ":memory:"
	// database shared by every query.
	db.SetMaxOpenConns(1)

	return &database{
		db:     db,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.db, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// Products returns the product store.
func (d *database) Products() loja.ProductRepo {
	return &productRepo{db: d.db, tableName: d.tables.Products}
}

// Accounts returns the account store.
func (d *database) Accounts() loja.AccountRepo {
	return &accountRepo{db: d.db, tableName: d.tables.Accounts}
}

// Close closes the database connection.
func (d *database) Close() error {
	return d.db.Close()
}
