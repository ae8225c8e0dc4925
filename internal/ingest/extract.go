package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// datePattern matches an embedded capture-date token: YYYY-MM-DD followed
// by an underscore and a sequence number, anywhere in the name.
var datePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})_(\d+)`)

// ExtractPhotoInfo parses a photo's original filename for an embedded
// date and sequence token. On a match with a valid calendar date it
// returns the date and a description of the form YYYY-MM-DD_NN with the
// sequence zero-padded to at least two digits. Otherwise both results
// are empty. Pure function, no side effects.
func ExtractPhotoInfo(filename string) (*time.Time, string) {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	m := datePattern.FindStringSubmatch(name)
	if m == nil {
		return nil, ""
	}

	// Strict calendar validation: "2024-13-01" parses the pattern but is
	// not a real date and must yield no match.
	date, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return nil, ""
	}

	seq := m[2]
	if len(seq) < 2 {
		seq = "0" + seq
	}

	return &date, fmt.Sprintf("%s_%s", m[1], seq)
}
