package sitehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
)

// Upload validates and materializes a new site, then registers it.
//
// The method performs the following steps:
//  1. Derives the slug from name (ErrInvalidName if empty)
//  2. Rejects slugs already present in the registry, in any status (ErrConflict)
//  3. Creates the site directory under the active root
//  4. Writes every entry: zip archives are scanned in full and then extracted,
//     allow-listed files are written flat, anything else aborts the upload
//  5. Measures the directory and inserts the registry row
//
// If any step after 3 fails the directory is removed before returning, so a
// failed upload leaves neither a directory nor a row. Policy failures return a
// *PolicyError naming the offending entry.
//
// Concurrency safety: holds the per-slug lock for the whole operation and runs
// the filesystem work on the worker pool, bounded by the operation timeout.
func (s *SiteService) Upload(ctx context.Context, name string, files []UploadFile) (UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return UploadResult{}, fmt.Errorf("upload site: %w", classify(err))
	}

	name = strings.TrimSpace(name)
	slug, err := Slugify(name)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload site: %w", err)
	}

	if len(files) == 0 {
		return UploadResult{}, fmt.Errorf("upload site %s: %w: no files provided", slug, ErrInvalidInput)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock, err := s.lock(ctx, slug)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload site %s: %w", slug, err)
	}
	defer unlock()

	var site Site
	err = s.pool.Run(ctx, func(ctx context.Context) error {
		var ingestErr error
		site, ingestErr = s.ingest(ctx, name, slug, files)
		return ingestErr
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload site %s: %w", slug, classify(err))
	}

	slog.Info("site uploaded", "slug", site.Slug, "size_bytes", site.SizeBytes, "files", len(files))

	return UploadResult{Slug: site.Slug, URL: s.ViewURL(site.Slug)}, nil
}

func (s *SiteService) ingest(ctx context.Context, name, slug string, files []UploadFile) (Site, error) {
	_, err := s.repo.Get(ctx, slug)
	if err == nil {
		return Site{}, fmt.Errorf("slug %s already taken: %w", slug, ErrConflict)
	}
	if !errors.Is(err, ErrNotFound) {
		return Site{}, fmt.Errorf("check slug: %w", err)
	}

	if err := s.storage.Create(ctx, slug); err != nil {
		return Site{}, fmt.Errorf("create site directory: %w", err)
	}

	success := false
	defer func() {
		if !success {
			s.rollback(slug)
		}
	}()

	budget := newByteBudget(s.maxSiteBytes)
	paths := newSitePaths()
	for _, f := range files {
		if err := s.ingestFile(ctx, slug, f, budget, paths); err != nil {
			return Site{}, err
		}
	}

	size, err := s.storage.Size(ctx, LocationActive, slug)
	if err != nil {
		return Site{}, fmt.Errorf("measure site: %w", err)
	}

	site, err := s.repo.Insert(ctx, NewSite{Name: name, Slug: slug, SizeBytes: size})
	if err != nil {
		return Site{}, fmt.Errorf("register site: %w", err)
	}

	success = true
	return site, nil
}

func (s *SiteService) ingestFile(ctx context.Context, slug string, f UploadFile, budget *byteBudget, paths *sitePaths) error {
	base := path.Base(strings.ReplaceAll(f.Name, `\`, "/"))
	fileName := SanitizeFilename(base)
	if fileName == "" {
		return &PolicyError{Kind: ErrNotAllowed, Name: f.Name, Reason: "invalid file name"}
	}

	switch ClassifyFile(fileName) {
	case KindForbidden:
		return &PolicyError{Kind: ErrForbiddenContent, Name: f.Name}
	case KindArchive:
		return s.extractArchive(ctx, slug, fileName, f.Data, budget, paths)
	case KindPlain:
		if conflict, ok := paths.claim(fileName); !ok {
			return &PolicyError{Kind: ErrNotAllowed, Name: f.Name, Reason: "path conflicts with " + conflict}
		}
		if err := budget.Take(int64(len(f.Data))); err != nil {
			return &PolicyError{Kind: ErrTooLarge, Name: f.Name, Reason: err.Error()}
		}
		if _, err := s.storage.WriteFile(ctx, slug, fileName, bytes.NewReader(f.Data)); err != nil {
			return fmt.Errorf("write %s: %w", fileName, err)
		}
		return nil
	default:
		return &PolicyError{Kind: ErrNotAllowed, Name: f.Name}
	}
}

func (s *SiteService) rollback(slug string) {
	ctx, cancel := s.cleanupContext()
	defer cancel()

	if err := s.storage.RemoveAll(ctx, LocationActive, slug); err != nil {
		slog.Error("failed to roll back site directory", "slug", slug, "err", err)
		return
	}
	slog.Debug("rolled back site directory", "slug", slug)
}

// byteBudget tracks the remaining uncompressed bytes an upload may write.
// A zero limit means unlimited.
type byteBudget struct {
	limit     int64
	remaining int64
}

func newByteBudget(limit int64) *byteBudget {
	return &byteBudget{limit: limit, remaining: limit}
}

func (b *byteBudget) Take(n int64) error {
	if b.limit == 0 {
		return nil
	}
	if n > b.remaining {
		return fmt.Errorf("site exceeds %d bytes", b.limit)
	}
	b.remaining -= n
	return nil
}
