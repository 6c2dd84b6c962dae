package sitehost

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type SiteStatus string

const (
	StatusActive  SiteStatus = "active"
	StatusDeleted SiteStatus = "deleted"
)

func (s SiteStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusDeleted:
		return true
	default:
		return false
	}
}

// Location returns the storage root that holds directories of sites in this status.
func (s SiteStatus) Location() Location {
	if s == StatusDeleted {
		return LocationDeleted
	}
	return LocationActive
}

func ParseSiteStatus(s string) (SiteStatus, error) {
	status := SiteStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid site status: %s (valid statuses: active, deleted)", s)
	}
	return status, nil
}

// Location names one of the two storage roots.
type Location string

const (
	LocationActive  Location = "sites"
	LocationDeleted Location = "deleted"
)

func (l Location) IsValid() bool {
	return l == LocationActive || l == LocationDeleted
}

type Site struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	SizeBytes int64      `json:"size_bytes"`
	Status    SiteStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

type NewSite struct {
	Name      string
	Slug      string
	SizeBytes int64
}

// UploadFile is a single entry of an upload. Data may itself be a zip archive.
type UploadFile struct {
	Name string
	Data []byte
}

type UploadResult struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

type Usage struct {
	TotalSites   int64 `json:"total_sites"`
	TotalStorage int64 `json:"total_storage"`
}

type ListingEntry struct {
	Name  string
	IsDir bool
	Size  int64
}

// View is the resolved content for a site's primary address: either a single
// file (Content set) or a synthesized directory listing (Entries set).
type View struct {
	Slug    string
	Name    string
	ModTime time.Time
	Content io.ReadSeekCloser
	Entries []ListingEntry
}

func (v View) IsListing() bool {
	return v.Content == nil
}

type Asset struct {
	Name    string
	Size    int64
	ModTime time.Time
	Content io.ReadSeekCloser
}

type Export struct {
	Site     Site
	Filename string
	Data     []byte
}

// Tables holds configurable table names for site metadata.
type Tables struct {
	Sites string `mapstructure:"sites"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Sites == "" {
		return errors.New("validate tables: sites table name cannot be empty")
	}

	if !IsValidTableName(t.Sites) {
		return fmt.Errorf("validate tables: invalid sites table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Sites)
	}

	return nil
}
