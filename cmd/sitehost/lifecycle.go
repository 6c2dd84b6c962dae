package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/config"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [flags] <slug1> [slug2] ...",
	Short: "Soft-delete sites",
	Long: `Move sites to the deleted root and mark them deleted in the registry.
Deleted sites stop being served and can be brought back with 'sitehost restore'.

Examples:
  # Delete a single site
  sitehost delete my-site

  # Delete several quietly
  sitehost delete -q old-site older-site`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args, "deleted", (*sitehost.SiteService).Delete)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [flags] <slug1> [slug2] ...",
	Short: "Restore soft-deleted sites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args, "restored", (*sitehost.SiteService).Restore)
	},
}

var transitionQuiet bool

func init() {
	for _, c := range []*cobra.Command{deleteCmd, restoreCmd} {
		c.Flags().BoolVarP(&transitionQuiet, "quiet", "q", false, "suppress per-site output")
		rootCmd.AddCommand(c)
	}
}

func runTransition(
	cmd *cobra.Command,
	slugs []string,
	verb string,
	fn func(*sitehost.SiteService, context.Context, string) error,
) error {
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

	done := 0
	notFound := 0

	for _, slug := range slugs {
		err := fn(a.service, ctx, slug)
		if errors.Is(err, sitehost.ErrNotFound) {
			notFound++
			if !transitionQuiet {
				slog.Warn("not found", "slug", slug)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", slug, err)
		}
		done++
		if !transitionQuiet {
			slog.Info(verb, "slug", slug)
		}
	}

	slog.Info("complete", verb, done, "not_found", notFound)
	return nil
}
