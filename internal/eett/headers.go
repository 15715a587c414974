package eett

import "strings"

// headerRule maps header-cell text to a record field by substring containment.
// Matching is case- and diacritic-sensitive: the registry renders these labels
// verbatim and tolerant matching here would start claiming unrelated columns.
type headerRule struct {
	field    string
	contains []string // all fragments must be present
}

// headerRules is evaluated top to bottom per cell; the first matching rule
// wins and a cell maps to at most one field.
//
// Note the overlap between the first two rules: a label such as "Κωδ. Θέσης"
// (capitalized Θ) misses the lowercase "θέσης" fragment of the first rule and
// falls through to the second, which is how the sequence column gets claimed
// when present. The live site currently lowercases the label, so the second
// rule rarely fires; both rules are kept because the intent behind the
// distinction is not recoverable from the markup.
var headerRules = []headerRule{
	{field: FieldPositionCode, contains: []string{"Κωδ.", "θέσης"}},
	{field: FieldSequence, contains: []string{"Κωδ. Θέσης"}},
	{field: FieldCategory, contains: []string{"Κατηγορία"}},
	{field: FieldCompany, contains: []string{"Εταιρία"}},
	{field: FieldAddress, contains: []string{"Διεύθυνση"}},
	{field: FieldMunicipality, contains: []string{"Δήμος"}},
}

// requiredFields must all be mapped for a table to count as the results table.
var requiredFields = []string{
	FieldPositionCode,
	FieldCompany,
	FieldAddress,
	FieldMunicipality,
}

// HeaderMap maps record field names to zero-based column indices within one
// table's header row. It is built per table and discarded afterwards.
type HeaderMap map[string]int

// mapHeaders classifies each header cell against headerRules.
//
// Later cells never overwrite an already-claimed field, so the first column
// carrying a recognized label wins. Cell text is expected pre-trimmed.
func mapHeaders(cells []string) HeaderMap {
	hm := HeaderMap{}
	for i, text := range cells {
		for _, rule := range headerRules {
			if !containsAll(text, rule.contains) {
				continue
			}
			if _, taken := hm[rule.field]; !taken {
				hm[rule.field] = i
			}
			break
		}
	}
	return hm
}

// Valid reports whether all required fields were discovered.
// An invalid map is the signal that a table is layout, not results.
func (hm HeaderMap) Valid() bool {
	for _, f := range requiredFields {
		if _, ok := hm[f]; !ok {
			return false
		}
	}
	return true
}

// maxIndex returns the largest mapped column index, or -1 for an empty map.
func (hm HeaderMap) maxIndex() int {
	max := -1
	for _, i := range hm {
		if i > max {
			max = i
		}
	}
	return max
}

// extract builds one record from a data row's cell texts.
//
// Rows with too few cells to cover every mapped column are rejected rather
// than partially read; short rows are usually colspan separators or footers.
func (hm HeaderMap) extract(cells []string) (AntennaRecord, bool) {
	if len(cells) <= hm.maxIndex() {
		return AntennaRecord{}, false
	}

	optional := func(field string) string {
		if i, ok := hm[field]; ok {
			return cells[i]
		}
		return ""
	}

	return AntennaRecord{
		Sequence:     optional(FieldSequence),
		PositionCode: cells[hm[FieldPositionCode]],
		Category:     optional(FieldCategory),
		Company:      cells[hm[FieldCompany]],
		Address:      cells[hm[FieldAddress]],
		Municipality: cells[hm[FieldMunicipality]],
	}, true
}

func containsAll(s string, fragments []string) bool {
	for _, frag := range fragments {
		if !strings.Contains(s, frag) {
			return false
		}
	}
	return true
}
