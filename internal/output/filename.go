// Package output renders scraped antenna records to files.
//
// Both writers share the same fixed column order (eett.RecordFields) and the
// same skip-on-empty rule: with zero records no file is created at all.
// CSV and XLSX writes are independent; a failure of one never blocks the
// other (the caller decides what to do with each error).
package output

import (
	"regexp"
	"strings"
)

var (
	reUnsafe   = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
	reCollapse = regexp.MustCompile(`[-\s]+`)
)

// BaseName derives a filesystem-safe file stem from a municipality name:
// everything but letters, digits, underscores, spaces and hyphens is
// stripped, runs of spaces/hyphens collapse to a single underscore, and the
// result is prefixed "antennas_". Greek letters survive intact.
func BaseName(municipality string) string {
	s := reUnsafe.ReplaceAllString(municipality, "")
	s = strings.TrimSpace(s)
	s = reCollapse.ReplaceAllString(s, "_")
	return "antennas_" + s
}
