package postgres

import (
	"context"
	"fmt"

	"github.com/amww/loja"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, pool *pgxpool.Pool) error
	Down      func(ctx context.Context, pool *pgxpool.Pool) error
}

func getTableMigrations(tables loja.Tables) []TableMigration {
	return []TableMigration{
		{
			TableName: tables.Products,
			Up:        createProductsTable(tables.Products),
			Down:      dropTable(tables.Products),
		},
		{
			TableName: tables.Accounts,
			Up:        createAccountsTable(tables.Accounts),
			Down:      dropTable(tables.Accounts),
		},
	}
}

// Migrate creates every table that does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables loja.Tables) error {
	for _, migration := range getTableMigrations(tables) {
		if err := migration.Up(ctx, pool); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}
	return nil
}

// DropTables drops every table in reverse order.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables loja.Tables) error {
	migrations := getTableMigrations(tables)

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if err := migration.Down(ctx, pool); err != nil {
			return fmt.Errorf("migrate down %s: %w", migration.TableName, err)
		}
	}

	return nil
}

func createProductsTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		quotedTable := pgx.Identifier{tableName}.Sanitize()
		indexListing := pgx.Identifier{fmt.Sprintf("idx_%s_listing", tableName)}.Sanitize()

		sql := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
				image_url TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS %s
			ON %s (created_at, id);
		`,
			quotedTable,
			indexListing, quotedTable,
		)

		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create products table: %w", err)
		}
		return nil
	}
}

func createAccountsTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		sql := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`, pgx.Identifier{tableName}.Sanitize())

		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create accounts table: %w", err)
		}
		return nil
	}
}

func dropTable(tableName string) func(context.Context, *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tableName}.Sanitize())
		_, err := pool.Exec(ctx, sql)
		return err
	}
}
