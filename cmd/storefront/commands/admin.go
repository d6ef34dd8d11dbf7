package commands

import (
	"errors"
	"log"

	"github.com/spf13/cobra"

	"storefront/internal/auth"
	"storefront/internal/config"
)

var (
	adminUsername string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the admin login",
}

var setCredentialsCmd = &cobra.Command{
	Use:   "set-credentials",
	Short: "Create or replace the admin username and password",
	Long: `Create or replace the admin username and password.

Every open admin session is logged out.

Examples:
  storefront admin set-credentials --username owner --password 'long-secret'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.DevMode {
			return errors.New("set-credentials needs MySQL; unset DEV_MODE")
		}
		rows, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rows.Close()
		if err := auth.New(rows).SetCredentials(cmd.Context(), adminUsername, adminPassword); err != nil {
			return err
		}
		log.Printf("admin credentials set for %q", adminUsername)
		return nil
	},
}

func init() {
	setCredentialsCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username (4-30 characters)")
	setCredentialsCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (8-64 characters)")
	_ = setCredentialsCmd.MarkFlagRequired("username")
	_ = setCredentialsCmd.MarkFlagRequired("password")
	adminCmd.AddCommand(setCredentialsCmd)
	rootCmd.AddCommand(adminCmd)
}
