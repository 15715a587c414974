package eett

import (
	"testing"
)

// TestMapHeaders_OrderIndependent verifies that header mapping depends only
// on cell text, not on column position: any ordering of the same labels maps
// each field to wherever its label landed.
func TestMapHeaders_OrderIndependent(t *testing.T) {
	t.Parallel()

	labels := map[string]string{
		FieldPositionCode: "Κωδ. θέσης",
		FieldCategory:     "Κατηγορία",
		FieldCompany:      "Εταιρία",
		FieldAddress:      "Διεύθυνση",
		FieldMunicipality: "Δήμος",
	}

	orders := [][]string{
		{FieldPositionCode, FieldCategory, FieldCompany, FieldAddress, FieldMunicipality},
		{FieldMunicipality, FieldAddress, FieldCompany, FieldCategory, FieldPositionCode},
		{FieldCompany, FieldMunicipality, FieldPositionCode, FieldCategory, FieldAddress},
	}

	for _, order := range orders {
		cells := make([]string, len(order))
		for i, field := range order {
			cells[i] = labels[field]
		}

		hm := mapHeaders(cells)
		if !hm.Valid() {
			t.Fatalf("order %v: expected valid map, got %v", order, hm)
		}
		for i, field := range order {
			if hm[field] != i {
				t.Errorf("order %v: field %s mapped to %d, want %d", order, field, hm[field], i)
			}
		}
	}
}

// TestMapHeaders_Validity verifies the required-fields check: missing any of
// position_code, company, address, municipality invalidates the map, while
// sequence and category are optional.
func TestMapHeaders_Validity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cells []string
		valid bool
	}{
		{
			name:  "all required present, optionals absent",
			cells: []string{"Κωδ. θέσης", "Εταιρία", "Διεύθυνση", "Δήμος"},
			valid: true,
		},
		{
			name:  "missing company",
			cells: []string{"Κωδ. θέσης", "Διεύθυνση", "Δήμος"},
			valid: false,
		},
		{
			name:  "navigation table",
			cells: []string{"Αρχική", "Αναζήτηση", "Επικοινωνία"},
			valid: false,
		},
		{
			name:  "empty row",
			cells: nil,
			valid: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := mapHeaders(tt.cells).Valid(); got != tt.valid {
				t.Fatalf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

// TestMapHeaders_WhitespaceAndNoise verifies that label matching is substring
// containment: padded or decorated labels still map.
func TestMapHeaders_WhitespaceAndNoise(t *testing.T) {
	t.Parallel()

	hm := mapHeaders([]string{
		"Κωδ. θέσης (EETT)",
		"Κατηγορία κεραίας",
		"Εταιρία / Πάροχος",
		"Διεύθυνση εγκατάστασης",
		"Δήμος",
	})
	if !hm.Valid() {
		t.Fatalf("expected valid map, got %v", hm)
	}
	if hm[FieldCategory] != 1 {
		t.Errorf("category mapped to %d, want 1", hm[FieldCategory])
	}
}

// TestMapHeaders_SequenceOverlap documents the overlap between the
// position-code rule and the more specific "Κωδ. Θέσης" rule: the
// capitalized label misses the lowercase fragment of the first rule and is
// claimed as sequence instead.
func TestMapHeaders_SequenceOverlap(t *testing.T) {
	t.Parallel()

	hm := mapHeaders([]string{"Κωδ. Θέσης", "Κωδ. θέσης", "Εταιρία", "Διεύθυνση", "Δήμος"})
	if hm[FieldSequence] != 0 {
		t.Errorf("sequence mapped to %d, want 0", hm[FieldSequence])
	}
	if hm[FieldPositionCode] != 1 {
		t.Errorf("position_code mapped to %d, want 1", hm[FieldPositionCode])
	}
	if !hm.Valid() {
		t.Fatalf("expected valid map, got %v", hm)
	}
}

// TestMapHeaders_FirstColumnWins verifies that a duplicated label does not
// overwrite the earlier claim.
func TestMapHeaders_FirstColumnWins(t *testing.T) {
	t.Parallel()

	hm := mapHeaders([]string{"Δήμος", "Δήμος"})
	if hm[FieldMunicipality] != 0 {
		t.Fatalf("municipality mapped to %d, want 0", hm[FieldMunicipality])
	}
}

// TestHeaderMapExtract_ShortRow verifies rows with too few cells are skipped,
// never indexed out of bounds.
func TestHeaderMapExtract_ShortRow(t *testing.T) {
	t.Parallel()

	hm := HeaderMap{
		FieldPositionCode: 0,
		FieldCompany:      1,
		FieldAddress:      2,
		FieldMunicipality: 3,
	}

	if _, ok := hm.extract([]string{"1406001", "COSMOTE", "ΛΕΩΦ. ΑΘΗΝΩΝ 1"}); ok {
		t.Fatal("expected short row to be skipped")
	}
	if _, ok := hm.extract(nil); ok {
		t.Fatal("expected empty row to be skipped")
	}

	rec, ok := hm.extract([]string{"1406001", "COSMOTE", "ΛΕΩΦ. ΑΘΗΝΩΝ 1", "ΑΘΗΝΑΙΩΝ"})
	if !ok {
		t.Fatal("expected exact-length row to extract")
	}
	if rec.PositionCode != "1406001" || rec.Municipality != "ΑΘΗΝΑΙΩΝ" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Sequence != "" || rec.Category != "" {
		t.Fatalf("optional fields should be empty when unmapped: %+v", rec)
	}
}
