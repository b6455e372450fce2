// Package database provides a single entry point for the product and account
// stores.
//
// # Supported Backends
//
//   - SQLite: default backend for development and single-node deployments
//   - PostgreSQL: backend using a pgx connection pool
//
// # Usage
//
//	cfg := database.Config{
//	    Type:        "sqlite",
//	    DSN:         "loja.db",
//	    AutoMigrate: true,
//	    Tables:      loja.Tables{Products: "loja_products", Accounts: "loja_accounts"},
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	catalog, err := loja.NewCatalog(db.Products(), store, loja.CatalogConfig{})
//
// Open pings the backend, runs migrations when AutoMigrate is set and
// validates the schema. Connect only opens the connection.
//
// # Subpackages
//
//   - database/postgres: PostgreSQL implementation using pgx
//   - database/sqlite: SQLite implementation using modernc.org/sqlite
package database
