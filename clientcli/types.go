package clientcli

import (
	"time"

	"github.com/google/uuid"
)

// UploadOptions configures an upload operation.
type UploadOptions struct {
	Name  string   // site display name, the server derives the slug from it
	Paths []string // files and directories; directories are zipped client-side
}

// UploadResult describes a created site.
type UploadResult struct {
	Name  string   `json:"name"`
	Slug  string   `json:"slug"`
	URL   string   `json:"url"`
	Files []string `json:"files"`
	Size  int64    `json:"size_bytes"`
}

// DownloadOptions configures a site export download.
type DownloadOptions struct {
	Slug      string
	LocalPath string // empty = <slug>.zip, "-" = stdout
}

// DownloadResult represents a downloaded site archive.
type DownloadResult struct {
	Slug      string `json:"slug"`
	LocalPath string `json:"local_path"`
	Size      int64  `json:"size_bytes"`
}

// ActionResult represents the outcome of a delete or restore for one slug.
type ActionResult struct {
	Slug    string `json:"slug"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"` // nil on success
}

// SiteInfo represents a site as reported by the server.
type SiteInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SizeBytes int64     `json:"size_bytes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// UsageResult reports active site totals.
type UsageResult struct {
	TotalSites            int64  `json:"totalSites"`
	TotalStorage          int64  `json:"totalStorage"`
	TotalStorageFormatted string `json:"totalStorageFormatted"`
}

// uploadFile and uploadRequest mirror the server's upload body.
type uploadFile struct {
	FileName string `json:"fileName"`
	FileData string `json:"fileData"`
}

type uploadRequest struct {
	SiteName string       `json:"siteName"`
	Files    []uploadFile `json:"files"`
}

type uploadResponse struct {
	OK   bool   `json:"ok"`
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

type siteListResponse struct {
	OK    bool       `json:"ok"`
	Sites []SiteInfo `json:"sites"`
}

type messageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// errorResponse mirrors the server's JSON error body.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code"`
	Error string `json:"error"`
}
