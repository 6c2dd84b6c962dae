package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sagarc03/sitehost/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sites",
	Long:  `Print every site in the registry, newest first. Reads the registry only.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := openDatabase(ctx, cfg.Database, false)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	sites, err := db.GetRepo().ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list sites: %w", err)
	}

	out := cmd.OutOrStdout()

	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(sites)
	}

	if len(sites) == 0 {
		_, _ = fmt.Fprintln(out, "No sites found")
		return nil
	}

	maxSlugLen := 4 // "SLUG"
	for i := range sites {
		maxSlugLen = max(maxSlugLen, len(sites[i].Slug))
	}

	_, _ = fmt.Fprintf(out, "%-*s  %-7s  %10s  %s\n", maxSlugLen, "SLUG", "STATUS", "SIZE", "CREATED")
	_, _ = fmt.Fprintf(out, "%s  %s  %s  %s\n", strings.Repeat("-", maxSlugLen), strings.Repeat("-", 7), strings.Repeat("-", 10), strings.Repeat("-", 19))

	for i := range sites {
		s := &sites[i]
		_, _ = fmt.Fprintf(out, "%-*s  %-7s  %10s  %s\n",
			maxSlugLen,
			s.Slug,
			s.Status,
			humanize.Bytes(uint64(max(s.SizeBytes, 0))),
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}

	_, _ = fmt.Fprintf(out, "\n%d site(s)\n", len(sites))
	return nil
}

