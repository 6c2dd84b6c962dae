package sitehost

import (
	"context"
	"io"
	"io/fs"
)

// SiteRepo defines the interface for site metadata persistence.
// Implementations must handle concurrent access safely and enforce slug
// uniqueness across all statuses.
//
// All methods accept a context for cancellation and timeout control.
type SiteRepo interface {
	// Get retrieves a site by slug regardless of status.
	//
	// Returns:
	//   - Site: The site record if found
	//   - error: ErrNotFound if slug doesn't exist, or other database errors
	Get(ctx context.Context, slug string) (Site, error)

	// GetActive retrieves a site by slug only when its status is active.
	//
	// Returns:
	//   - error: ErrNotFound if slug doesn't exist or the site is deleted
	GetActive(ctx context.Context, slug string) (Site, error)

	// Insert creates a new active site record.
	//
	// Returns:
	//   - Site: The created record with ID and creation time
	//   - error: ErrConflict if the slug is already present in any status
	Insert(ctx context.Context, site NewSite) (Site, error)

	// SetStatus changes the status of an existing site.
	//
	// Returns:
	//   - error: ErrNotFound if slug doesn't exist
	SetStatus(ctx context.Context, slug string, status SiteStatus) error

	// ListAll returns every site, newest first.
	ListAll(ctx context.Context) ([]Site, error)

	// CountActive returns the number of active sites.
	CountActive(ctx context.Context) (int64, error)

	// SumActiveBytes returns the total recorded size of all active sites.
	SumActiveBytes(ctx context.Context) (int64, error)
}

// SiteStorage defines the interface for site directory operations.
// A site directory lives under one of two roots (see Location).
//
// Implementations must confine every path to the site's own directory and
// respect context cancellation during long walks and writes.
type SiteStorage interface {
	// Create makes an empty directory for slug under the active root.
	// Returns ErrConflict if the directory already exists.
	Create(ctx context.Context, slug string) error

	// Exists reports whether a directory for slug exists under loc.
	Exists(ctx context.Context, loc Location, slug string) (bool, error)

	// WriteFile stores content at name (a slash-separated relative path) inside
	// the active directory of slug, creating parent directories as needed.
	// Existing files are overwritten.
	WriteFile(ctx context.Context, slug, name string, content io.Reader) (int64, error)

	// Size returns the total size of all regular files under the site
	// directory, or 0 if it does not exist.
	Size(ctx context.Context, loc Location, slug string) (int64, error)

	// RemoveAll deletes the site directory and everything below it.
	// It is a no-op if the directory does not exist.
	RemoveAll(ctx context.Context, loc Location, slug string) error

	// Move relocates the site directory from one root to the other,
	// destroying any existing destination first. The relocation is not atomic;
	// callers serialize access per slug.
	Move(ctx context.Context, slug string, from, to Location) error

	// Open opens a regular file inside the site directory.
	// Returns ErrNotFound if the file does not exist or is a directory.
	Open(ctx context.Context, loc Location, slug, name string) (io.ReadSeekCloser, fs.FileInfo, error)

	// ReadDir lists the top-level entries of the site directory, sorted by name.
	ReadDir(ctx context.Context, loc Location, slug string) ([]fs.DirEntry, error)

	// Files returns the slash-separated relative paths of every regular file
	// in the site directory, in lexical walk order.
	Files(ctx context.Context, loc Location, slug string) ([]string, error)

	// Slugs returns the names of every site directory under loc.
	Slugs(ctx context.Context, loc Location) ([]string, error)
}
