package sitehost

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Problem describes how the registry and the filesystem disagree about a slug.
type Problem string

const (
	// ProblemMissingDirectory: a row exists but its directory does not.
	ProblemMissingDirectory Problem = "missing_directory"
	// ProblemOrphanDirectory: a directory exists with no row at all.
	ProblemOrphanDirectory Problem = "orphan_directory"
	// ProblemMisplacedDirectory: a directory sits in the root that does not
	// match its row's status.
	ProblemMisplacedDirectory Problem = "misplaced_directory"
)

type Inconsistency struct {
	Slug     string   `json:"slug"`
	Location Location `json:"location"`
	Problem  Problem  `json:"problem"`
}

// Check compares every registry row with the directories under both roots and
// reports each disagreement, sorted by slug. It does not modify anything.
func (s *SiteService) Check(ctx context.Context) ([]Inconsistency, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("check: %w", classify(err))
	}

	sites, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("check: %w", classify(err))
	}

	dirs := make(map[Location]map[string]bool, 2)
	for _, loc := range []Location{LocationActive, LocationDeleted} {
		slugs, err := s.storage.Slugs(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("check: list %s: %w", loc, classify(err))
		}
		dirs[loc] = make(map[string]bool, len(slugs))
		for _, slug := range slugs {
			dirs[loc][slug] = true
		}
	}

	var found []Inconsistency
	known := make(map[string]bool, len(sites))

	for _, site := range sites {
		known[site.Slug] = true
		want := site.Status.Location()
		other := LocationDeleted
		if want == LocationDeleted {
			other = LocationActive
		}

		if !dirs[want][site.Slug] {
			found = append(found, Inconsistency{Slug: site.Slug, Location: want, Problem: ProblemMissingDirectory})
		}
		if dirs[other][site.Slug] {
			found = append(found, Inconsistency{Slug: site.Slug, Location: other, Problem: ProblemMisplacedDirectory})
		}
	}

	for _, loc := range []Location{LocationActive, LocationDeleted} {
		for slug := range dirs[loc] {
			if !known[slug] {
				found = append(found, Inconsistency{Slug: slug, Location: loc, Problem: ProblemOrphanDirectory})
			}
		}
	}

	slices.SortFunc(found, func(a, b Inconsistency) int {
		return cmp.Or(cmp.Compare(a.Slug, b.Slug), cmp.Compare(a.Location, b.Location))
	})

	return found, nil
}

// PruneOrphan removes an active-root directory that has no registry row.
// Returns ErrConflict if a row exists for the slug, in any status.
func (s *SiteService) PruneOrphan(ctx context.Context, rawSlug string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("prune orphan: %w", classify(err))
	}

	slug, err := SanitizeSlug(rawSlug)
	if err != nil {
		return fmt.Errorf("prune orphan: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock, err := s.lock(ctx, slug)
	if err != nil {
		return fmt.Errorf("prune orphan %s: %w", slug, err)
	}
	defer unlock()

	_, err = s.repo.Get(ctx, slug)
	if err == nil {
		return fmt.Errorf("prune orphan %s: registered site: %w", slug, ErrConflict)
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("prune orphan %s: %w", slug, classify(err))
	}

	if err := s.storage.RemoveAll(ctx, LocationActive, slug); err != nil {
		return fmt.Errorf("prune orphan %s: %w", slug, classify(err))
	}

	slog.Info("pruned orphan site directory", "slug", slug)
	return nil
}
