package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janseva/janseva/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Migrate applies any pending schema migrations to the configured
PostgreSQL database. Serve runs migrations automatically at startup;
this command exists for operating the schema independently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	newLogger(cfg)

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	fmt.Println("Migrations applied")
	return nil
}
