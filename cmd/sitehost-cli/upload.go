package main

import (
	"context"
	"os"

	"github.com/sagarc03/sitehost/clientcli"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <name> <path> [path...]",
	Short: "Publish a new site",
	Long: `Publish a new site from local files and directories.

The site slug is derived from <name> by the server. Directories are zipped
before upload and their contents land at the top of the site. A .zip file is
extracted by the server; any other file is stored as-is.

Examples:
  sitehost-cli upload "My Portfolio" ./public
  sitehost-cli upload docs ./site.zip
  sitehost-cli upload -q landing index.html style.css`,
	Args: cobra.MinimumNArgs(2),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := client.Upload(ctx, clientcli.UploadOptions{
		Name:  args[0],
		Paths: args[1:],
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatUpload(os.Stdout, result)
}
