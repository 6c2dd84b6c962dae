package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/clientcli"
	"github.com/sagarc03/sitehost/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <name> <path1> [path2] ...",
	Short: "Publish local files as a new site",
	Long: `Publish a site straight into storage without going through the HTTP server.

Files go through the same checks as an upload: the slug is derived from
<name>, zip archives are scanned and extracted, and any denied file aborts
the whole site. Directories are zipped first so their layout is kept.

Examples:
  # Publish a build directory
  sitehost add "My Portfolio" ./dist

  # Publish an archive and a stray page
  sitehost add docs ./docs.zip ./extra.html`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := openApp(ctx, cfg, false, false)
	if err != nil {
		return err
	}
	defer a.close()

	var files []sitehost.UploadFile
	for _, p := range args[1:] {
		f, collectErr := collectUploadFile(cmd, p)
		if collectErr != nil {
			return fmt.Errorf("collect %s: %w", p, collectErr)
		}
		files = append(files, f)
	}

	result, err := a.service.Upload(ctx, args[0], files)
	if err != nil {
		return fmt.Errorf("add %s: %w", args[0], err)
	}

	slog.Info("added", "slug", result.Slug, "url", result.URL, "entries", len(files))
	return nil
}

// collectUploadFile reads a file as-is or zips a directory.
func collectUploadFile(cmd *cobra.Command, p string) (sitehost.UploadFile, error) {
	info, err := os.Stat(p)
	if err != nil {
		return sitehost.UploadFile{}, err
	}

	if info.IsDir() {
		data, names, err := clientcli.ZipDirectory(cmd.Context(), p)
		if err != nil {
			return sitehost.UploadFile{}, err
		}
		slog.Debug("zipped directory", "path", p, "files", len(names))
		return sitehost.UploadFile{Name: filepath.Base(filepath.Clean(p)) + ".zip", Data: data}, nil
	}

	data, err := os.ReadFile(p) //#nosec G304 -- p is user-provided input
	if err != nil {
		return sitehost.UploadFile{}, err
	}
	return sitehost.UploadFile{Name: filepath.Base(p), Data: data}, nil
}
