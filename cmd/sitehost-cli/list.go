package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sites on the server",
	Long: `List every site on the server, newest first, including soft-deleted ones.

Examples:
  sitehost-cli list
  sitehost-cli list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(_ *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	sites, err := client.List(context.Background())
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, sites)
}
