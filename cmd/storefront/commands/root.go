package commands

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "WhatsApp storefront with an admin CMS",
	Long: `storefront serves a single-shop catalog page whose products are ordered
through WhatsApp, plus the admin API used to edit it.

Settings are read from the environment (and .env when present). Set
DEV_MODE=true to run without MySQL or an object store.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore returns the row store selected by cfg with the schema in place.
func openStore(ctx context.Context, cfg *config.Config) (catalog.Store, error) {
	if cfg.DevMode {
		log.Println("DEV_MODE=true: running without MySQL (in-memory store)")
		return store.NewMemory(), nil
	}
	db, err := store.Open(ctx, store.Options{DSN: cfg.MySQLDSN, TiDBCA: cfg.TiDBCA, MaxOpenConns: cfg.MaxOpenConns})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store.NewMySQL(db), nil
}
