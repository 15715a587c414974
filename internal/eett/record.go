// Package eett scrapes antenna-installation records from the EETT public
// antenna registry (https://keraies.eett.gr/).
//
// The registry exposes a paginated HTML search form. This package is
// responsible for:
//   - Discovering the selectable municipalities and the form's hidden fields
//   - Driving the startPage/myAction pagination protocol against one session
//   - Locating the results table on each page and mapping its Greek column
//     headers to record fields by substring matching
//
// Design constraints:
//   - Requests are strictly sequential with a politeness delay between pages.
//   - A failed page never discards records already accumulated; the scrape
//     degrades to a partial result instead of propagating the error.
//   - All extracted values are opaque display text; no numeric parsing.
package eett

// Record field names, in the canonical output column order.
const (
	FieldSequence     = "sequence"
	FieldPositionCode = "position_code"
	FieldCategory     = "category"
	FieldCompany      = "company"
	FieldAddress      = "address"
	FieldMunicipality = "municipality"
)

// RecordFields is the fixed column order used by all output writers.
var RecordFields = []string{
	FieldSequence,
	FieldPositionCode,
	FieldCategory,
	FieldCompany,
	FieldAddress,
	FieldMunicipality,
}

// AntennaRecord is one discovered antenna installation.
//
// Sequence and Category are optional: they are empty when the results table
// does not carry the corresponding column. The remaining fields are always
// populated from the table (they are required for a table to be recognized
// as the results table at all).
type AntennaRecord struct {
	Sequence     string
	PositionCode string
	Category     string
	Company      string
	Address      string
	Municipality string
}

// Values returns the record's fields in RecordFields order.
func (r AntennaRecord) Values() []string {
	return []string{
		r.Sequence,
		r.PositionCode,
		r.Category,
		r.Company,
		r.Address,
		r.Municipality,
	}
}
