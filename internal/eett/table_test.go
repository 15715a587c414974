package eett

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

const resultsTable = `
<table>
  <tr><th>Α/Α</th><th>Κωδ. θέσης</th><th>Κατηγορία</th><th>Εταιρία</th><th>Διεύθυνση</th><th>Δήμος</th></tr>
  <tr><td>1</td><td>1406001</td><td>Α</td><td>COSMOTE</td><td> ΟΔΟΣ ΕΝΑ 1 </td><td>ΧΑΛΚΙΔΕΩΝ</td></tr>
  <tr><td>2</td><td>1406002</td><td>Β</td><td>VODAFONE</td><td>ΟΔΟΣ ΔΥΟ 2</td><td>ΧΑΛΚΙΔΕΩΝ</td></tr>
</table>`

// TestParseResults_SkipsLayoutTables verifies the locator ignores tables
// whose header row does not satisfy the required fields and returns records
// from the first table that does.
func TestParseResults_SkipsLayoutTables(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `
<table><tr><td>Αρχική</td><td>Αναζήτηση</td></tr><tr><td>a</td><td>b</td></tr></table>
`+resultsTable)

	records := parseResults(doc)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].PositionCode != "1406001" || records[1].PositionCode != "1406002" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].Address != "ΟΔΟΣ ΕΝΑ 1" {
		t.Errorf("cell text not trimmed: %q", records[0].Address)
	}
	// Α/Α is not a recognized label, so sequence stays empty.
	if records[0].Sequence != "" {
		t.Errorf("sequence = %q, want empty", records[0].Sequence)
	}
}

// TestParseResults_NoResultsTable verifies a document without a matching
// table yields nil, the "no results on this page" signal.
func TestParseResults_NoResultsTable(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<p>Δεν βρέθηκαν αποτελέσματα</p><table><tr><td>x</td></tr><tr><td>y</td></tr></table>`)
	if records := parseResults(doc); records != nil {
		t.Fatalf("expected nil, got %+v", records)
	}
}

// TestParseTable_MalformedRows verifies short rows (colspan separators,
// footers) are skipped without affecting surrounding rows.
func TestParseTable_MalformedRows(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `
<table>
  <tr><th>Κωδ. θέσης</th><th>Εταιρία</th><th>Διεύθυνση</th><th>Δήμος</th></tr>
  <tr><td>1406001</td><td>COSMOTE</td><td>ΟΔΟΣ 1</td><td>ΑΘΗΝΑΙΩΝ</td></tr>
  <tr><td colspan="4">Σύνολο: 2</td></tr>
  <tr><td>1406002</td><td>WIND</td><td>ΟΔΟΣ 2</td><td>ΑΘΗΝΑΙΩΝ</td></tr>
</table>`)

	records := parseResults(doc)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if records[1].Company != "WIND" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

// TestParseTable_HeaderOnly verifies a results-shaped table with no data
// rows is treated as empty so later tables still get scanned.
func TestParseTable_HeaderOnly(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `
<table><tr><th>Κωδ. θέσης</th><th>Εταιρία</th><th>Διεύθυνση</th><th>Δήμος</th></tr></table>
`+resultsTable)

	records := parseResults(doc)
	if len(records) != 2 {
		t.Fatalf("expected records from the second table, got %d", len(records))
	}
}
