// Package config provides configuration loading and validation for loja.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (LOJA_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with LOJA_ prefix:
//   - server.port → LOJA_SERVER_PORT
//   - database.dsn → LOJA_DATABASE_DSN
//   - session.secret → LOJA_SESSION_SECRET
//   - auth.admin.password → LOJA_AUTH_ADMIN_PASSWORD
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port, max_upload_size, max_request_size and timeouts
//   - Service: cleanup_timeout for compensating deletes
//   - Catalog: page_size of the product listing
//   - Database: type, DSN, auto_migrate and table names
//   - Storage: image directory and the URL prefix it is served under
//   - Session: cookie name, signing secret, max_age and secure flag
//   - Auth: protect_writes and an optional bootstrap admin
//   - CORS: cross-origin resource sharing settings
//   - Log: level and format
//
// Credentials never have defaults. When session.secret is empty a random key
// is generated at startup, which signs everyone out on restart.
package config
