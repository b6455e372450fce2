package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amww/loja/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "loja",
	Short:   "Product catalog and store admin server",
	Long: `Loja serves a small storefront with a server-rendered admin for
creating, editing and deleting products and their images.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if f, _ := cmd.Flags().GetString("config"); f != "" {
			files = append(files, f)
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log.Level, cfg.Log.Format)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: LOJA_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: loja.db, env: LOJA_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-path", "", "image directory path (default: ./data, env: LOJA_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: LOJA_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json (env: LOJA_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
