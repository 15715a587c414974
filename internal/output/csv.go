package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"eettscrape/internal/eett"
)

// WriteCSV writes records to a CSV file at path: one header row in
// eett.RecordFields order, then one row per record.
//
// With zero records the file is not created and nil is returned.
func WriteCSV(path string, records []eett.AntennaRecord) error {
	if len(records) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(eett.RecordFields); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.Values()); err != nil {
			_ = f.Close()
			return fmt.Errorf("write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}
