package sitehost

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
)

const (
	// maxNestedDepth bounds how many archive levels the deny-list scan follows.
	maxNestedDepth = 4
	// maxNestedScanBytes caps how much of a nested archive is read for the scan.
	maxNestedScanBytes = 64 << 20
)

type archiveEntry struct {
	file *zip.File
	path string
}

// sitePaths records every file written by one upload and the directories
// implied by them, so a name cannot be used as both a file and a directory.
type sitePaths struct {
	files map[string]bool
	dirs  map[string]bool
}

func newSitePaths() *sitePaths {
	return &sitePaths{files: make(map[string]bool), dirs: make(map[string]bool)}
}

// claim registers p as a file. It returns the conflicting path when p is
// already a directory or one of its parents is already a file.
func (sp *sitePaths) claim(p string) (string, bool) {
	if sp.dirs[p] {
		return p, false
	}
	for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
		if sp.files[dir] {
			return dir, false
		}
	}

	sp.files[p] = true
	for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
		sp.dirs[dir] = true
	}
	return "", true
}

// extractArchive scans every entry of a zip archive before writing anything,
// then extracts the entries into the site directory.
func (s *SiteService) extractArchive(ctx context.Context, slug, archiveName string, data []byte, budget *byteBudget, paths *sitePaths) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return &PolicyError{Kind: ErrNotAllowed, Name: archiveName, Reason: "not a valid zip archive"}
	}

	entries, err := scanArchive(archiveName, zr, paths)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.extractEntry(ctx, slug, e, budget); err != nil {
			return err
		}
	}

	slog.Debug("archive extracted", "slug", slug, "archive", archiveName, "entries", len(entries))
	return nil
}

func (s *SiteService) extractEntry(ctx context.Context, slug string, e archiveEntry, budget *byteBudget) error {
	rc, err := e.file.Open()
	if err != nil {
		return &PolicyError{Kind: ErrNotAllowed, Name: e.file.Name, Reason: "unreadable archive entry"}
	}
	defer func() { _ = rc.Close() }()

	r := &budgetReader{r: rc, budget: budget, name: e.file.Name}
	if _, err := s.storage.WriteFile(ctx, slug, e.path, r); err != nil {
		return fmt.Errorf("extract %s: %w", e.path, err)
	}
	return nil
}

// scanArchive checks every entry against the deny-list, for unsafe paths and
// for file/directory collisions. Nested zip archives are stored as files, but
// their contents are checked against the deny-list too. Directory entries are
// skipped; parents are created when files are written.
func scanArchive(archiveName string, zr *zip.Reader, paths *sitePaths) ([]archiveEntry, error) {
	entries := make([]archiveEntry, 0, len(zr.File))

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}

		info := f.FileInfo()
		if info.IsDir() {
			continue
		}

		cleaned, ok := cleanArchivePath(f.Name)
		if IsDeniedFile(f.Name) || (ok && IsDeniedFile(cleaned)) {
			return nil, &PolicyError{Kind: ErrForbiddenContent, Name: f.Name, Reason: "found in " + archiveName}
		}
		if !ok {
			return nil, &PolicyError{Kind: ErrForbiddenContent, Name: f.Name, Reason: "unsafe path in " + archiveName}
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return nil, &PolicyError{Kind: ErrForbiddenContent, Name: f.Name, Reason: "symbolic link in " + archiveName}
		}
		if conflict, ok := paths.claim(cleaned); !ok {
			return nil, &PolicyError{Kind: ErrNotAllowed, Name: f.Name, Reason: "path conflicts with " + conflict}
		}
		if ClassifyFile(cleaned) == KindArchive {
			if err := scanNested(archiveName+"/"+cleaned, f, 1); err != nil {
				return nil, err
			}
		}

		entries = append(entries, archiveEntry{file: f, path: cleaned})
	}

	return entries, nil
}

// scanNested applies the deny-list to the entries of an archive stored inside
// another archive. Content that is not a readable zip is left as opaque data.
func scanNested(name string, f *zip.File, depth int) error {
	if depth > maxNestedDepth {
		return &PolicyError{Kind: ErrNotAllowed, Name: name, Reason: "archives nested too deeply"}
	}

	rc, err := f.Open()
	if err != nil {
		return &PolicyError{Kind: ErrNotAllowed, Name: name, Reason: "unreadable archive entry"}
	}
	data, err := io.ReadAll(io.LimitReader(rc, maxNestedScanBytes+1))
	_ = rc.Close()
	if err != nil {
		return &PolicyError{Kind: ErrNotAllowed, Name: name, Reason: "unreadable archive entry"}
	}
	if len(data) > maxNestedScanBytes {
		return &PolicyError{Kind: ErrNotAllowed, Name: name, Reason: "nested archive too large to inspect"}
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil
	}

	for _, inner := range zr.File {
		cleaned, ok := cleanArchivePath(inner.Name)
		if IsDeniedFile(inner.Name) || (ok && IsDeniedFile(cleaned)) {
			return &PolicyError{Kind: ErrForbiddenContent, Name: inner.Name, Reason: "found in " + name}
		}
		if ClassifyFile(inner.Name) == KindArchive && !inner.FileInfo().IsDir() {
			if err := scanNested(name+"/"+inner.Name, inner, depth+1); err != nil {
				return err
			}
		}
	}

	return nil
}

// budgetReader charges every byte read against the upload size budget, so a
// lying uncompressed-size header cannot bypass the limit.
type budgetReader struct {
	r      io.Reader
	budget *byteBudget
	name   string
}

func (b *budgetReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if n > 0 {
		if takeErr := b.budget.Take(int64(n)); takeErr != nil {
			return n, &PolicyError{Kind: ErrTooLarge, Name: b.name, Reason: takeErr.Error()}
		}
	}
	return n, err
}

// Export bundles a site directory into a zip archive.
//
// The registry row may be active or deleted; the archive is read from the
// root matching the row's status. Paths inside the archive are the
// slash-separated paths relative to the site directory.
//
// Returns ErrNotFound if either the row or the directory is missing.
func (s *SiteService) Export(ctx context.Context, rawSlug string) (Export, error) {
	if err := ctx.Err(); err != nil {
		return Export{}, fmt.Errorf("export site: %w", classify(err))
	}

	slug, err := SanitizeSlug(rawSlug)
	if err != nil {
		return Export{}, fmt.Errorf("export site: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	unlock, err := s.lock(ctx, slug)
	if err != nil {
		return Export{}, fmt.Errorf("export site %s: %w", slug, err)
	}
	defer unlock()

	site, err := s.repo.Get(ctx, slug)
	if err != nil {
		return Export{}, fmt.Errorf("export site %s: %w", slug, classify(err))
	}

	loc := site.Status.Location()
	exists, err := s.storage.Exists(ctx, loc, slug)
	if err != nil {
		return Export{}, fmt.Errorf("export site %s: %w", slug, classify(err))
	}
	if !exists {
		return Export{}, fmt.Errorf("export site %s: directory missing: %w", slug, ErrNotFound)
	}

	var data []byte
	err = s.pool.Run(ctx, func(ctx context.Context) error {
		var buildErr error
		data, buildErr = s.buildArchive(ctx, loc, slug)
		return buildErr
	})
	if err != nil {
		return Export{}, fmt.Errorf("export site %s: %w", slug, classify(err))
	}

	return Export{Site: site, Filename: slug + ".zip", Data: data}, nil
}

func (s *SiteService) buildArchive(ctx context.Context, loc Location, slug string) ([]byte, error) {
	files, err := s.storage.Files(ctx, loc, slug)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return nil, err
		}
		if err := s.addFileToZip(ctx, zw, loc, slug, name); err != nil {
			_ = zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip writer: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *SiteService) addFileToZip(ctx context.Context, zw *zip.Writer, loc Location, slug, name string) error {
	f, info, err := s.storage.Open(ctx, loc, slug, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("create zip header for %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s to zip: %w", name, err)
	}

	return nil
}
