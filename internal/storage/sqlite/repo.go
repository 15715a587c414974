package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"eettscrape/internal/eett"
	"eettscrape/internal/storage"
)

// Repo implements storage.Repository for SQLite.
//
// Idempotency relies on INSERT OR IGNORE backed by the UNIQUE constraint on
// (position_code, company); SQLite has no ON CONFLICT target clause the way
// Postgres does.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

// New opens (creating if needed) the SQLite database at cfg.DSN.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS antennas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sequence TEXT NOT NULL DEFAULT '',
	position_code TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL,
	address TEXT NOT NULL,
	municipality TEXT NOT NULL,
	scraped_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	UNIQUE (position_code, company)
)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table antennas: %w", err)
	}
	return nil
}

func (r *Repo) InsertRecords(ctx context.Context, records []eett.AntennaRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString("INSERT OR IGNORE INTO antennas (")
	b.WriteString(strings.Join(storage.Columns, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(records)*len(storage.Columns))
	for i, rec := range records {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, storage.RecordArgs(rec)...)
	}

	res, err := r.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("insert antennas: %w", err)
	}
	return res.RowsAffected()
}
