package postgres

import (
	"strings"
	"testing"

	"eettscrape/internal/eett"
)

// TestBuildInsertSQL verifies placeholder numbering, argument order and the
// conflict clause without needing a live database.
func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	records := []eett.AntennaRecord{
		{PositionCode: "1406001", Company: "COSMOTE", Address: "ΟΔΟΣ 1", Municipality: "ΧΑΛΚΙΔΕΩΝ"},
		{Sequence: "2", PositionCode: "1406002", Company: "WIND", Address: "ΟΔΟΣ 2", Municipality: "ΧΑΛΚΙΔΕΩΝ"},
	}

	sql, args := buildInsertSQL(records)

	if !strings.HasPrefix(sql, "INSERT INTO antennas (sequence, position_code, category, company, address, municipality) VALUES ") {
		t.Fatalf("unexpected prefix:\n%s", sql)
	}
	if !strings.Contains(sql, "($1, $2, $3, $4, $5, $6), ($7, $8, $9, $10, $11, $12)") {
		t.Fatalf("unexpected placeholders:\n%s", sql)
	}
	if !strings.HasSuffix(sql, "ON CONFLICT (position_code, company) DO NOTHING") {
		t.Fatalf("missing conflict clause:\n%s", sql)
	}

	if len(args) != 12 {
		t.Fatalf("expected 12 args, got %d", len(args))
	}
	if args[1] != "1406001" || args[6] != "2" || args[9] != "WIND" {
		t.Fatalf("unexpected args: %v", args)
	}
}
