package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <slug> [slug...]",
	Short: "Soft-delete sites",
	Long: `Soft-delete one or more sites. Deleted sites stop being served but can
be restored later.

Examples:
  sitehost-cli delete my-portfolio
  sitehost-cli delete -q old-a old-b`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		results, err := client.Delete(context.Background(), args)
		if err != nil {
			return err
		}
		return writeActions(os.Stdout, "Deleted", results)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <slug> [slug...]",
	Short: "Restore soft-deleted sites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		results, err := client.Restore(context.Background(), args)
		if err != nil {
			return err
		}
		return writeActions(os.Stdout, "Restored", results)
	},
}
