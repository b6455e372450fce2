package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/amww/loja"
	"github.com/amww/loja/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Import products from a YAML file",
	Long: `Create one product per entry of a YAML file:

  products:
    - name: Notebook
      description: Notebook Dell
      price: 2999.99
    - name: Mouse
      description: Mouse sem fio
      price: 99.99

Entries are validated like the web form. An invalid entry is reported and
skipped; the command fails if any entry was skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
}

func (p seedProduct) input() loja.ProductInput {
	return loja.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
	}
}

// parseSeed decodes a seed file. Unknown keys are rejected.
func parseSeed(r io.Reader) ([]loja.ProductInput, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	inputs := make([]loja.ProductInput, 0, len(f.Products))
	for _, p := range f.Products {
		inputs = append(inputs, p.input())
	}
	return inputs, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	inputs, err := parseSeed(f)
	if err != nil {
		return err
	}

	if len(inputs) == 0 {
		slog.Info("no products to seed")
		return nil
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	created, failed := 0, 0
	for i, in := range inputs {
		p, err := a.catalog.Create(ctx, in, nil)
		if err != nil {
			failed++
			slog.Warn("skipped product", "index", i, "name", in.Name, "err", err)
			continue
		}
		created++
		slog.Info("created product", "product_id", p.ID, "name", p.Name)
	}

	slog.Info("seed complete", "created", created, "skipped", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d products skipped", failed, len(inputs))
	}
	return nil
}
