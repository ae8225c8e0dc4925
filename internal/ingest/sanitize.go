package ingest

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// removeDiacritics strips diacritical marks ("průvodní" -> "pruvodni").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SanitizeFilename reduces an uploaded filename to a filesystem-safe base
// name: path components are stripped, diacritics removed, and anything
// outside [A-Za-z0-9_.-] collapsed into single underscores. A name that
// sanitizes to nothing falls back to "photo" plus the original extension.
func SanitizeFilename(name string) string {
	// Strip directory components from either separator convention.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	base = removeDiacritics(base)
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._-")

	ext = unsafeChars.ReplaceAllString(ext, "")
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if base == "" {
		base = "photo"
	}
	return base + ext
}
