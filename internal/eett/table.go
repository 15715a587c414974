package eett

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseResults scans all tables in document order and returns the records of
// the first one that both carries a valid header row and yields at least one
// record. Layout and navigation tables fail the header check and are skipped.
//
// An empty return means "no results on this page"; the caller decides whether
// that ends pagination or merely the scrape.
func parseResults(doc *goquery.Document) []AntennaRecord {
	var records []AntennaRecord
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		records = parseTable(table)
		return len(records) == 0
	})
	return records
}

// parseTable extracts records from a single table, or nil if the table's
// first row does not map to the required fields.
func parseTable(table *goquery.Selection) []AntennaRecord {
	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil
	}

	hm := mapHeaders(cellTexts(rows.First(), "th, td"))
	if !hm.Valid() {
		return nil
	}

	var records []AntennaRecord
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		if rec, ok := hm.extract(cellTexts(row, "td")); ok {
			records = append(records, rec)
		}
	})
	return records
}

// cellTexts returns the trimmed text of each cell matched by selector,
// in document order.
func cellTexts(row *goquery.Selection, selector string) []string {
	var texts []string
	row.Find(selector).Each(func(_ int, cell *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(cell.Text()))
	})
	return texts
}
