package main

import (
	"context"
	"io"
	"os"

	"github.com/sagarc03/sitehost/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <slug> [local-path]",
	Short: "Download a site as a zip archive",
	Long: `Download a zip export of a site. Deleted sites can be exported too.

The archive is written to <slug>.zip unless a path is given.

Examples:
  sitehost-cli download my-portfolio
  sitehost-cli download my-portfolio ./backups/portfolio.zip
  sitehost-cli download --stdout my-portfolio | unzip -l /dev/stdin`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(_ *cobra.Command, args []string) error {
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(context.Background(), clientcli.DownloadOptions{
		Slug:      args[0],
		LocalPath: localPath,
	})
	if err != nil {
		return err
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
