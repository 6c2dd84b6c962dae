package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the site registry with the storage directory",
	Long: `Report every slug where the registry and the storage directory
disagree:

  missing_directory    a row exists but its directory is gone
  orphan_directory     a directory exists with no row
  misplaced_directory  a directory sits under the wrong root for its status

With --prune-orphans, orphan directories under the active root are removed.
Orphans under the deleted root are only reported.

The check is not coordinated with a running server; run it while the
server is stopped when pruning.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var checkPruneOrphans bool

func init() {
	checkCmd.Flags().BoolVar(&checkPruneOrphans, "prune-orphans", false, "remove active directories that have no registry row")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	problems, err := a.service.Check(ctx)
	if err != nil {
		return err
	}

	pruned := 0
	for _, p := range problems {
		if checkPruneOrphans && p.Problem == sitehost.ProblemOrphanDirectory && p.Location == sitehost.LocationActive {
			if err := a.service.PruneOrphan(ctx, p.Slug); err != nil {
				return fmt.Errorf("prune %s: %w", p.Slug, err)
			}
			pruned++
			continue
		}
		slog.Warn("inconsistent site", "slug", p.Slug, "location", p.Location, "problem", p.Problem)
	}

	slog.Info("check complete", "problems", len(problems), "pruned", pruned)
	if len(problems) > pruned {
		return fmt.Errorf("%d inconsistencies found", len(problems)-pruned)
	}
	return nil
}
