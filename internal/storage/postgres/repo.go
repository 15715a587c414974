package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"eettscrape/internal/eett"
	"eettscrape/internal/storage"
)

// Repo implements storage.Repository for Postgres.
//
// Idempotency uses INSERT ... ON CONFLICT (position_code, company) DO
// NOTHING, so re-scraping a municipality never fails on the unique
// constraint and never duplicates rows.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

// New connects a pgx pool to cfg.DSN.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS antennas (
	id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	sequence TEXT NOT NULL DEFAULT '',
	position_code TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL,
	address TEXT NOT NULL,
	municipality TEXT NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (position_code, company)
)`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table antennas: %w", err)
	}
	return nil
}

func (r *Repo) InsertRecords(ctx context.Context, records []eett.AntennaRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	sql, args := buildInsertSQL(records)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("insert antennas: %w", err)
	}
	return tag.RowsAffected(), nil
}

// buildInsertSQL renders one multi-VALUES insert with numbered placeholders.
func buildInsertSQL(records []eett.AntennaRecord) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO antennas (")
	b.WriteString(strings.Join(storage.Columns, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(records)*len(storage.Columns))
	for i, rec := range records {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range storage.Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*len(storage.Columns)+j+1)
		}
		b.WriteString(")")
		args = append(args, storage.RecordArgs(rec)...)
	}

	b.WriteString(" ON CONFLICT (position_code, company) DO NOTHING")
	return b.String(), args
}
