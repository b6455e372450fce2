package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/amww/loja/database"
	lojahttp "github.com/amww/loja/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for loja.
type Config struct {
	Server   ServerConfig        `mapstructure:"server"`
	Service  ServiceConfig       `mapstructure:"service"`
	Catalog  CatalogConfig       `mapstructure:"catalog"`
	Database database.Config     `mapstructure:"database"`
	Storage  StorageConfig       `mapstructure:"storage"`
	Session  SessionConfig       `mapstructure:"session"`
	Auth     AuthConfig          `mapstructure:"auth"`
	CORS     lojahttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig           `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration. Timeouts are in seconds.
type ServerConfig struct {
	Port           int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxUploadSize  int64 `mapstructure:"max_upload_size" validate:"min=1"`
	MaxRequestSize int64 `mapstructure:"max_request_size" validate:"min=1,gtefield=MaxUploadSize"`
	ReadTimeout    int   `mapstructure:"read_timeout" validate:"min=1"`
	WriteTimeout   int   `mapstructure:"write_timeout" validate:"min=1"`
	IdleTimeout    int   `mapstructure:"idle_timeout" validate:"min=1"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	CleanupTimeout int `mapstructure:"cleanup_timeout" validate:"min=1"`
}

// CatalogConfig holds listing configuration.
type CatalogConfig struct {
	PageSize int `mapstructure:"page_size" validate:"min=1,max=500"`
}

// StorageConfig holds image storage configuration.
type StorageConfig struct {
	Path       string `mapstructure:"path" validate:"required"`
	PublicPath string `mapstructure:"public_path" validate:"required,startswith=/"`
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	Name   string `mapstructure:"name" validate:"required"`
	Secret string `mapstructure:"secret" validate:"omitempty,min=32"`
	MaxAge int    `mapstructure:"max_age" validate:"min=0"`
	Secure bool   `mapstructure:"secure"`
}

// AuthConfig holds access control configuration.
type AuthConfig struct {
	ProtectWrites bool        `mapstructure:"protect_writes"`
	Admin         AdminConfig `mapstructure:"admin"`
}

// AdminConfig describes an account created on startup when both fields are set.
type AdminConfig struct {
	Email    string `mapstructure:"email" validate:"omitempty,email"`
	Password string `mapstructure:"password" validate:"required_with=Email,omitempty,min=6"`
}

// Enabled reports whether a bootstrap admin is configured.
func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.Password != ""
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-path": "storage.path",
	"port":         "server.port",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey, ok := flagToViperKey[f.Name]
		if !ok {
			return
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.max_upload_size", 5<<20)
	v.SetDefault("server.max_request_size", 32<<20)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)

	v.SetDefault("service.cleanup_timeout", 30) // seconds

	v.SetDefault("catalog.page_size", 20)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "loja.db")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.tables.products", "loja_products")
	v.SetDefault("database.tables.accounts", "loja_accounts")

	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.public_path", "/imagens")

	v.SetDefault("session.name", "loja_session")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.max_age", 86400)
	v.SetDefault("session.secure", false)

	v.SetDefault("auth.protect_writes", true)
	v.SetDefault("auth.admin.email", "")
	v.SetDefault("auth.admin.password", "")

	v.SetDefault("cors.enabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("LOJA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Database.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
