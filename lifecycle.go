package sitehost

import (
	"context"
	"fmt"
	"log/slog"
)

// Delete soft-deletes a site: its directory moves to the deleted root and the
// row's status becomes deleted. Deleting an already deleted site is a no-op.
//
// Returns ErrNotFound if the row is missing or the active directory is gone.
// If the status update fails the directory is moved back before returning.
func (s *SiteService) Delete(ctx context.Context, rawSlug string) error {
	return s.transition(ctx, "delete site", rawSlug, StatusDeleted)
}

// Restore reverses Delete: the directory moves back to the active root and
// the row becomes active again. Restoring an active site is a no-op.
func (s *SiteService) Restore(ctx context.Context, rawSlug string) error {
	return s.transition(ctx, "restore site", rawSlug, StatusActive)
}

func (s *SiteService) transition(ctx context.Context, op, rawSlug string, target SiteStatus) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}

	slug, err := SanitizeSlug(rawSlug)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock, err := s.lock(ctx, slug)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, slug, err)
	}
	defer unlock()

	site, err := s.repo.Get(ctx, slug)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, slug, classify(err))
	}

	if site.Status == target {
		slog.Debug("site already in requested status", "slug", slug, "status", target)
		return nil
	}

	from, to := site.Status.Location(), target.Location()

	exists, err := s.storage.Exists(ctx, from, slug)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, slug, classify(err))
	}
	if !exists {
		return fmt.Errorf("%s %s: directory missing from %s: %w", op, slug, from, ErrNotFound)
	}

	err = s.pool.Run(ctx, func(ctx context.Context) error {
		return s.storage.Move(ctx, slug, from, to)
	})
	if err != nil {
		return fmt.Errorf("%s %s: move directory: %w", op, slug, classify(err))
	}

	if err := s.repo.SetStatus(ctx, slug, target); err != nil {
		s.moveBack(slug, to, from)
		return fmt.Errorf("%s %s: update status: %w", op, slug, classify(err))
	}

	slog.Info("site status changed", "slug", slug, "from", site.Status, "to", target)
	return nil
}

// moveBack undoes a directory move after the registry refused the new status.
func (s *SiteService) moveBack(slug string, from, to Location) {
	ctx, cancel := s.cleanupContext()
	defer cancel()

	if err := s.storage.Move(ctx, slug, from, to); err != nil {
		slog.Error("failed to move site directory back", "slug", slug, "from", from, "to", to, "err", err)
		return
	}
	slog.Debug("moved site directory back", "slug", slug, "to", to)
}
