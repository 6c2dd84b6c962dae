package main

import (
	"github.com/spf13/cobra"

	"github.com/sagarc03/sitehost/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the site registry tables",
	Long: `Create the site registry table and its indexes if they do not exist,
then validate the schema. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context(), cfg.Database, true)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return nil
}
