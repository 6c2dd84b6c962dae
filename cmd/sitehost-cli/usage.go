package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show active site count and storage used",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		usage, err := client.Usage(context.Background())
		if err != nil {
			return err
		}
		return getFormatter().FormatUsage(os.Stdout, usage)
	},
}
