// Package filesystem provides the directory-tree storage backend for sitehost.
// Every site lives in its own directory under one of two roots inside a
// single os.Root, so no operation can resolve outside the storage path.
// Writes are atomic using temp files and rename.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/sitehost"
)

var _ sitehost.SiteStorage = (*Store)(nil)

// Store provides site directory operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store on the given root directory and makes
// sure both the active and the deleted roots exist.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) (*Store, error) {
	for _, loc := range []sitehost.Location{sitehost.LocationActive, sitehost.LocationDeleted} {
		if err := root.MkdirAll(string(loc), 0o755); err != nil {
			return nil, fmt.Errorf("new file storage: create %s root: %w", loc, err)
		}
	}
	return &Store{root: root}, nil
}

func siteDir(loc sitehost.Location, slug string) (string, error) {
	if !loc.IsValid() {
		return "", fmt.Errorf("invalid location: %q", loc)
	}
	if !sitehost.IsValidSlug(slug) {
		return "", fmt.Errorf("invalid slug %q: %w", slug, sitehost.ErrNotFound)
	}
	return string(loc) + "/" + slug, nil
}

// Create makes an empty site directory under the active root.
// Returns sitehost.ErrConflict if it already exists.
func (s *Store) Create(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, err := siteDir(sitehost.LocationActive, slug)
	if err != nil {
		return err
	}

	if err := s.root.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create %s: %w", dir, sitehost.ErrConflict)
		}
		return fmt.Errorf("create %s: %w", dir, err)
	}

	return nil
}

// Exists reports whether the site directory exists under loc.
func (s *Store) Exists(ctx context.Context, loc sitehost.Location, slug string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	dir, err := siteDir(loc, slug)
	if err != nil {
		return false, err
	}

	info, err := s.root.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", dir, err)
	}

	return info.IsDir(), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// WriteFile atomically writes content to name inside the active site
// directory using a temp file and rename. It creates intermediate directories
// as needed and returns the number of bytes written. The operation respects
// context cancellation.
func (s *Store) WriteFile(ctx context.Context, slug, name string, content io.Reader) (int64, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}

	dir, err := siteDir(sitehost.LocationActive, slug)
	if err != nil {
		return 0, err
	}
	if !fs.ValidPath(name) || name == "." {
		return 0, fmt.Errorf("write file: invalid path %q: %w", name, sitehost.ErrInvalidInput)
	}

	if _, err := s.root.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("write file: site %s: %w", slug, sitehost.ErrNotFound)
		}
		return 0, fmt.Errorf("write file: %w", err)
	}

	dest := dir + "/" + name

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return 0, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	written, err := io.Copy(t, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return 0, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return 0, fmt.Errorf("could not sync written file: %w", err)
	}

	if parent := path.Dir(dest); parent != dir {
		if err := s.root.MkdirAll(parent, 0o755); err != nil {
			return 0, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, dest); renameErr != nil {
		return 0, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true
	return written, nil
}

// Size sums the sizes of every regular file below the site directory.
// A missing directory has size 0.
func (s *Store) Size(ctx context.Context, loc sitehost.Location, slug string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dir, err := siteDir(loc, slug)
	if err != nil {
		return 0, err
	}

	var total int64
	err = s.walkFiles(ctx, dir, func(_ string, info fs.FileInfo) {
		total += info.Size()
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("size %s: %w", dir, err)
	}

	return total, nil
}

// RemoveAll deletes the site directory and its contents. Missing directories
// are not an error.
func (s *Store) RemoveAll(ctx context.Context, loc sitehost.Location, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, err := siteDir(loc, slug)
	if err != nil {
		return err
	}

	if err := s.root.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}

	return nil
}

// Move relocates the site directory between roots. An existing destination
// is removed first. Returns sitehost.ErrNotFound if the source is missing.
func (s *Store) Move(ctx context.Context, slug string, from, to sitehost.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := siteDir(from, slug)
	if err != nil {
		return err
	}
	dst, err := siteDir(to, slug)
	if err != nil {
		return err
	}
	if src == dst {
		return nil
	}

	if _, err := s.root.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("move %s: %w", src, sitehost.ErrNotFound)
		}
		return fmt.Errorf("move %s: %w", src, err)
	}

	if err := s.root.RemoveAll(dst); err != nil {
		return fmt.Errorf("move %s: clear destination: %w", src, err)
	}

	if err := s.root.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s to %s: %w", src, dst, err)
	}

	return nil
}

// Open opens a regular file in the site directory. Returns
// sitehost.ErrNotFound if the file does not exist or is a directory.
func (s *Store) Open(ctx context.Context, loc sitehost.Location, slug, name string) (io.ReadSeekCloser, fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	dir, err := siteDir(loc, slug)
	if err != nil {
		return nil, nil, err
	}
	if !fs.ValidPath(name) || name == "." {
		return nil, nil, fmt.Errorf("open %q: %w", name, sitehost.ErrNotFound)
	}

	f, err := s.root.Open(dir + "/" + name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("open %s/%s: %w", slug, name, sitehost.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("open %s/%s: not a regular file: %w", slug, name, sitehost.ErrNotFound)
	}

	return f, info, nil
}

// ReadDir lists the top-level entries of the site directory, sorted by name.
func (s *Store) ReadDir(ctx context.Context, loc sitehost.Location, slug string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := siteDir(loc, slug)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read dir %s: %w", dir, sitehost.ErrNotFound)
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	return entries, nil
}

// Files returns the relative paths of all regular files in the site
// directory in lexical order.
func (s *Store) Files(ctx context.Context, loc sitehost.Location, slug string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := siteDir(loc, slug)
	if err != nil {
		return nil, err
	}

	var files []string
	err = s.walkFiles(ctx, dir, func(p string, _ fs.FileInfo) {
		files = append(files, strings.TrimPrefix(p, dir+"/"))
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("list files %s: %w", dir, sitehost.ErrNotFound)
		}
		return nil, fmt.Errorf("list files %s: %w", dir, err)
	}

	return files, nil
}

// Slugs returns the names of all site directories under loc. It is used by
// consistency checks that compare the filesystem against the registry.
func (s *Store) Slugs(ctx context.Context, loc sitehost.Location) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !loc.IsValid() {
		return nil, fmt.Errorf("invalid location: %q", loc)
	}

	entries, err := fs.ReadDir(s.root.FS(), string(loc))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", loc, err)
	}

	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			slugs = append(slugs, e.Name())
		}
	}

	return slugs, nil
}

// walkFiles calls fn for every regular file below dir. Symlinks and other
// special files are skipped.
func (s *Store) walkFiles(ctx context.Context, dir string, fn func(p string, info fs.FileInfo)) error {
	return fs.WalkDir(s.root.FS(), dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		fn(p, info)
		return nil
	})
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
