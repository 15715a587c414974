package eett

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
)

// MunicipalityOption is one selectable municipality from the search form:
// a display name and the opaque value the form posts for it.
type MunicipalityOption struct {
	Name  string
	Value string
}

// parseMunicipalityOptions reads the municipality selector's options in
// document order, dropping placeholder entries with an empty value or name.
func parseMunicipalityOptions(doc *goquery.Document) []MunicipalityOption {
	var opts []MunicipalityOption
	doc.Find(`select[name="municipality"] option`).Each(func(_ int, opt *goquery.Selection) {
		value := strings.TrimSpace(opt.AttrOr("value", ""))
		name := strings.TrimSpace(opt.Text())
		if value == "" || name == "" {
			return
		}
		opts = append(opts, MunicipalityOption{Name: name, Value: value})
	})
	return opts
}

// matchMunicipality finds the first option whose name caselessly contains the
// requested name, or vice versa. Document order decides ties.
//
// Unicode case folding (rather than plain lowercasing) matters for Greek:
// a final sigma folds to the same rune as the medial form, so "ΧΑΛΚΙΔΕΩΝ"
// matches "Χαλκιδέων" either way around.
func matchMunicipality(name string, opts []MunicipalityOption) (MunicipalityOption, bool) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(name))
	if want == "" {
		return MunicipalityOption{}, false
	}

	for _, opt := range opts {
		have := fold.String(opt.Name)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return opt, true
		}
	}
	return MunicipalityOption{}, false
}

// optionNames returns up to limit option display names, in document order.
// Used for the "municipality not found" hint.
func optionNames(opts []MunicipalityOption, limit int) []string {
	if limit > len(opts) {
		limit = len(opts)
	}
	names := make([]string, 0, limit)
	for _, opt := range opts[:limit] {
		names = append(names, opt.Name)
	}
	return names
}
