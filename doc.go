// Package sitehost provides the storage and lifecycle engine for hosting
// uploaded static sites under human-chosen names.
//
// A site is a directory of static assets (HTML, CSS, JS, images) identified by
// a slug derived from its display name. Sites are created from plain files or
// zip archives, served back by slug, and can be soft-deleted, restored, and
// exported as zip archives.
//
// # Key Components
//
//   - SiteService: Main service composing the registry and the site storage
//   - SiteRepo: Interface for site metadata persistence (PostgreSQL, SQLite)
//   - SiteStorage: Interface for site directories (see the filesystem package)
//   - Slugify / SanitizeFilename: Pure name and path sanitization helpers
//
// # Storage Layout
//
// Every registry row has exactly one directory: under the active root while
// the site is active and under the deleted root once it is soft-deleted.
// A row is written only after its directory is fully populated, so a failed
// upload leaves neither a row nor a directory behind.
//
// # Concurrency
//
// Operations that mutate a slug (upload, delete, restore, export) hold an
// in-process lock for that slug. Extraction, size walks, and archive building
// run on a bounded worker pool and are bounded by the operation timeout.
//
// # Example Usage
//
//	service, err := sitehost.NewSiteService(repo, storage, sitehost.ServiceConfig{
//	    OperationTimeout: time.Minute,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := service.Upload(ctx, "My Portfolio", []sitehost.UploadFile{
//	    {Name: "index.html", Data: page},
//	})
//
// See the http package for the REST API and the database package for metadata
// backends.
package sitehost
