// SPDX-License-Identifier: MIT

package fsutil

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxSegmentLen keeps rendered path segments under common filesystem
// limits. Callers that must not lose a suffix to the clamp check against
// it before sanitizing.
const MaxSegmentLen = 200

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizeSegment makes a single rendered path segment safe for the
// filesystem: control characters are stripped, path separators become a
// single space, whitespace is collapsed, and the result is length-clamped.
// Sanitizing an already-sanitized segment is a no-op.
func SanitizeSegment(segment string) string {
	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	cleaned := whitespaceRun.ReplaceAllString(b.String(), " ")
	cleaned = strings.TrimSpace(cleaned)
	// Trailing dots confuse several filesystems and defeat the ".." check.
	cleaned = strings.TrimRight(cleaned, ".")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) > MaxSegmentLen {
		cleaned = strings.TrimSpace(cleaned[:MaxSegmentLen])
	}
	return cleaned
}

// Slugify converts a title into a filesystem- and URL-safe slug.
// Example: "Monaco Grand Prix" → "monaco-grand-prix".
func Slugify(name string) string {
	if name == "" {
		return "item"
	}

	s := strings.ToLower(name)

	var result strings.Builder
	lastWasDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			lastWasDash = false
		} else if !lastWasDash {
			result.WriteRune('-')
			lastWasDash = true
		}
	}

	slug := strings.Trim(result.String(), "-")
	if len(slug) > 50 {
		slug = strings.TrimRight(slug[:50], "-")
	}
	if slug == "" {
		return "item"
	}
	return slug
}
