package commands

import (
	"log"

	"github.com/spf13/cobra"

	"storefront/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and seed the header and footer rows",
	Long: `Create missing tables and seed the header and footer rows.

The command is idempotent; serve runs the same bootstrap on startup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		rows, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rows.Close()
		log.Println("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
