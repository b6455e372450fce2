package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amww/loja/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove orphaned product images",
	Long: `Delete stored images that no product references.

Creating or editing a product writes the record before its image, so an
interrupted request can leave an image without a product, or a product
whose image was never recorded. This command lists every stored image and
removes those whose product is gone or has no image URL.`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	slog.Info("starting cleanup", "storage", cfg.Storage.Path)

	removed, err := a.catalog.PruneImages(ctx)
	if err != nil {
		return fmt.Errorf("prune images: %w", err)
	}

	slog.Info("cleanup complete", "images_removed", removed)
	return nil
}
