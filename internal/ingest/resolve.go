package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveFilename returns a filename that does not collide with any
// existing file in dir, probing name.ext, name_1.ext, name_2.ext, ...
// Existence is re-checked for every candidate, so sequential callers in
// one batch always receive distinct names.
func ResolveFilename(dir, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	candidate := filename
	for counter := 1; fileExists(filepath.Join(dir, candidate)); counter++ {
		candidate = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
	return candidate
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
