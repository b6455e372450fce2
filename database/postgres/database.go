package postgres

import (
	"context"
	"fmt"

	"github.com/amww/loja"
	"github.com/jackc/pgx/v5/pgxpool"
)

type database struct {
	pool   *pgxpool.Pool
	tables loja.Tables
}

// Connect establishes a connection pool to PostgreSQL.
// Tables should be validated before calling Connect.
func Connect(ctx context.Context, dsn string, tables loja.Tables) (*database, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &database{
		pool:   pool,
		tables: tables,
	}, nil
}

// Ping verifies the database connection is alive.
func (d *database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *database) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.pool, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Validate checks that the database schema matches expected structure.
func (d *database) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.pool, d.tables)
}

// Products returns the product store.
func (d *database) Products() loja.ProductRepo {
	return &productRepo{pool: d.pool, tableName: d.tables.Products}
}

// Accounts returns the account store.
func (d *database) Accounts() loja.AccountRepo {
	return &accountRepo{pool: d.pool, tableName: d.tables.Accounts}
}

// Close closes the database connection pool.
func (d *database) Close() error {
	d.pool.Close()
	return nil
}
