package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/syzygy/internal/config"
	"github.com/papapumpkin/syzygy/internal/store"
	"github.com/papapumpkin/syzygy/internal/ui"
)

var importCmd = &cobra.Command{
	Use:   "import <fixture.toml>...",
	Short: "Load TOML fixtures into the input database",
	Long: `Decodes each fixture and upserts its aspect records and longitude
samples into the SQLite database named by --db (or input.db). Records are
keyed by id, so re-importing a fixture replaces its rows.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("db", "", "SQLite input database")
	rootCmd.AddCommand(importCmd)
}

func runImport(c *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.Flags().Changed("db") {
		cfg.Input.DB, _ = c.Flags().GetString("db")
	}
	if cfg.Input.DB == "" {
		return fmt.Errorf("import: --db is required")
	}

	ctx := c.Context()
	db, err := store.Open(ctx, cfg.Input.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	printer := ui.New(c.OutOrStdout())
	for _, path := range args {
		fx, err := store.LoadFixture(path)
		if err != nil {
			return err
		}
		records := fx.Records()
		if err := db.PutAspects(ctx, records); err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		samples, err := fx.Samples()
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		if err := db.PutLongitudes(ctx, samples); err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		printer.Imported(path, len(records), len(samples))
	}
	return nil
}
