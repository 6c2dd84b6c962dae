package sitehost

import (
	"strings"
	"unicode/utf8"
)

// IsValidPath validates that a path string is safe to resolve inside a site
// directory. It accepts every path the upload sanitizer can produce and
// rejects a path that:
//   - is empty or absolute
//   - has an empty, "." or ".." segment (so no "//", trailing "/" or traversal)
//   - contains \ or ?, which never survive upload sanitizing
//   - is not valid UTF-8
//   - contains null bytes, control characters (< 0x20) or DEL (0x7f)
func IsValidPath(p string) bool {
	if p == "" || p[0] == '/' {
		return false
	}

	for seg := range strings.SplitSeq(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}

	if strings.ContainsAny(p, `\?`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}

// cleanArchivePath turns a zip entry name into a safe relative path.
// Each segment is passed through SanitizeFilename. It returns false when the
// entry is absolute, walks out of the destination, or has a segment that
// sanitizes to nothing.
func cleanArchivePath(name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, "\x00\\") || strings.HasPrefix(name, "/") {
		return "", false
	}

	segments := strings.Split(strings.TrimSuffix(name, "/"), "/")
	cleaned := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", false
		}

		safe := SanitizeFilename(seg)
		if safe == "" {
			return "", false
		}
		cleaned = append(cleaned, safe)
	}

	if len(cleaned) == 0 {
		return "", false
	}

	return strings.Join(cleaned, "/"), true
}
