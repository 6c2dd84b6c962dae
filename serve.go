package sitehost

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const indexFile = "index.html"

// View resolves the primary address of a site.
//
// Resolution order:
//  1. The slug is sanitized; malformed slugs are ErrNotFound
//  2. The directory must exist under the active root
//  3. The registry row must exist and be active, so a site is hidden as soon
//     as its status flips even if the directory is still in place
//  4. index.html is served when present
//  5. A directory holding exactly one regular file serves that file
//  6. Otherwise the top-level entries are returned as a listing
//
// When the returned View carries Content the caller must close it.
func (s *SiteService) View(ctx context.Context, rawSlug string) (View, error) {
	if err := ctx.Err(); err != nil {
		return View{}, fmt.Errorf("view site: %w", classify(err))
	}

	slug, err := SanitizeSlug(rawSlug)
	if err != nil {
		return View{}, fmt.Errorf("view site: %w", err)
	}

	exists, err := s.storage.Exists(ctx, LocationActive, slug)
	if err != nil {
		return View{}, fmt.Errorf("view site %s: %w", slug, classify(err))
	}
	if !exists {
		return View{}, fmt.Errorf("view site %s: %w", slug, ErrNotFound)
	}

	if _, err := s.repo.GetActive(ctx, slug); err != nil {
		return View{}, fmt.Errorf("view site %s: %w", slug, classify(err))
	}

	view, err := s.openView(ctx, slug, indexFile)
	if err == nil {
		return view, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return View{}, fmt.Errorf("view site %s: %w", slug, classify(err))
	}

	entries, err := s.storage.ReadDir(ctx, LocationActive, slug)
	if err != nil {
		return View{}, fmt.Errorf("view site %s: %w", slug, classify(err))
	}

	if len(entries) == 1 && entries[0].Type().IsRegular() {
		view, err := s.openView(ctx, slug, entries[0].Name())
		if err != nil {
			return View{}, fmt.Errorf("view site %s: %w", slug, classify(err))
		}
		return view, nil
	}

	listing := make([]ListingEntry, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		entry := ListingEntry{Name: e.Name(), IsDir: e.IsDir()}
		if !entry.IsDir {
			entry.Size = info.Size()
		}
		listing = append(listing, entry)
	}

	return View{Slug: slug, Entries: listing}, nil
}

func (s *SiteService) openView(ctx context.Context, slug, name string) (View, error) {
	f, info, err := s.storage.Open(ctx, LocationActive, slug, name)
	if err != nil {
		return View{}, err
	}
	return View{Slug: slug, Name: name, ModTime: info.ModTime(), Content: f}, nil
}

// OpenAsset opens a file from the static asset mount of an active site.
//
// An empty name or a name ending in "/" resolves to index.html in that
// directory. Names that are not valid relative paths are ErrNotFound. When
// strict asset mode is enabled the registry row must also be active;
// otherwise only the directory under the active root is consulted.
//
// The caller must close the returned Asset's Content.
func (s *SiteService) OpenAsset(ctx context.Context, rawSlug, name string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, fmt.Errorf("open asset: %w", classify(err))
	}

	slug, err := SanitizeSlug(rawSlug)
	if err != nil {
		return Asset{}, fmt.Errorf("open asset: %w", err)
	}

	if name == "" || strings.HasSuffix(name, "/") {
		name += indexFile
	}
	if !IsValidPath(name) {
		return Asset{}, fmt.Errorf("open asset %s/%s: invalid path: %w", slug, name, ErrNotFound)
	}

	if s.strictAssets {
		if _, err := s.repo.GetActive(ctx, slug); err != nil {
			return Asset{}, fmt.Errorf("open asset %s/%s: %w", slug, name, classify(err))
		}
	}

	f, info, err := s.storage.Open(ctx, LocationActive, slug, name)
	if err != nil {
		return Asset{}, fmt.Errorf("open asset %s/%s: %w", slug, name, classify(err))
	}

	return Asset{Name: name, Size: info.Size(), ModTime: info.ModTime(), Content: f}, nil
}
