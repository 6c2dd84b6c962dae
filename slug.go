package sitehost

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxSlugLength     = 100
	maxFilenameLength = 255
)

var (
	validSlugRegex     = regexp.MustCompile(`^[a-z0-9-]+$`)
	reservedNameRegex  = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
	onlyDotsRegex      = regexp.MustCompile(`^\.+$`)
	illegalFilenameSet = `/\?<>:*|"`
)

// Slugify derives the canonical slug for a site display name.
//
// The name is lower-cased, whitespace runs become a single hyphen, every
// character outside [a-z0-9-] is dropped, and the result is passed through
// SanitizeFilename. Repeated hyphens are collapsed and leading or trailing
// hyphens trimmed. Returns ErrInvalidName if nothing is left.
func Slugify(name string) (string, error) {
	var b strings.Builder
	b.Grow(len(name))

	inSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}

	slug := normalizeHyphens(SanitizeFilename(b.String()))
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}

	if slug == "" {
		return "", fmt.Errorf("slugify %q: %w", name, ErrInvalidName)
	}

	return slug, nil
}

func normalizeHyphens(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// IsValidSlug reports whether s is a canonical slug.
func IsValidSlug(s string) bool {
	return len(s) <= maxSlugLength && validSlugRegex.MatchString(s)
}

// SanitizeSlug cleans an externally supplied slug (from a URL, not a display
// name) and checks it is canonical. Unknown or malformed slugs return
// ErrNotFound so callers answer them the same way as a missing site.
func SanitizeSlug(raw string) (string, error) {
	slug := strings.ToLower(SanitizeFilename(raw))
	if !IsValidSlug(slug) {
		return "", fmt.Errorf("sanitize slug %q: %w", raw, ErrNotFound)
	}
	return slug, nil
}

// SanitizeFilename makes a single path segment safe to use as a file name.
//
// It removes path separators, the characters ? < > : * | ", and control
// characters. Names made only of dots and Windows reserved device names are
// replaced by the empty string, trailing dots and spaces are trimmed, and the
// result is capped at 255 bytes.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		if r == utf8.RuneError || r < 0x20 || (r >= 0x7f && r <= 0x9f) {
			continue
		}
		if strings.ContainsRune(illegalFilenameSet, r) {
			continue
		}
		b.WriteRune(r)
	}

	s := b.String()
	if onlyDotsRegex.MatchString(s) || reservedNameRegex.MatchString(s) {
		return ""
	}

	s = strings.TrimRight(s, ". ")
	if reservedNameRegex.MatchString(s) {
		return ""
	}

	return truncateUTF8(s, maxFilenameLength)
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
