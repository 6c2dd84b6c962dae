package sitehost

import (
	"path"
	"strings"
)

// FileKind is the ingestion treatment for an upload entry.
type FileKind int

const (
	KindRejected FileKind = iota
	KindForbidden
	KindArchive
	KindPlain
)

var allowedExtensions = map[string]bool{
	".zip": true, ".html": true, ".css": true, ".js": true,
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".gif": true, ".webp": true, ".ico": true, ".txt": true, ".json": true,
}

// deniedExtensions are always rejected, including inside archives.
var deniedExtensions = map[string]bool{
	".php": true, ".py": true, ".sh": true, ".env": true,
	".exe": true, ".dll": true, ".bat": true, ".cmd": true,
}

// extension returns the lower-cased extension of the last path segment.
// A bare dot-file such as ".env" is its own extension.
func extension(name string) string {
	return strings.ToLower(path.Ext(path.Base(name)))
}

// IsDeniedFile reports whether name carries a deny-listed extension.
func IsDeniedFile(name string) bool {
	return deniedExtensions[extension(name)]
}

// ClassifyFile decides how an upload entry is handled. The deny-list is
// checked before the allow-list.
func ClassifyFile(name string) FileKind {
	ext := extension(name)
	switch {
	case deniedExtensions[ext]:
		return KindForbidden
	case ext == ".zip":
		return KindArchive
	case allowedExtensions[ext]:
		return KindPlain
	default:
		return KindRejected
	}
}
