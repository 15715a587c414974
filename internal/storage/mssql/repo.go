package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"eettscrape/internal/eett"
	"eettscrape/internal/storage"
)

// Repo implements storage.Repository for Microsoft SQL Server.
//
// Idempotency uses INSERT ... WHERE NOT EXISTS per record. SQL Server has no
// ON CONFLICT clause; MERGE would also work but is overkill for an
// append-only table.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

// New connects to SQL Server at cfg.DSN and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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
IF OBJECT_ID(N'dbo.antennas', N'U') IS NULL
CREATE TABLE dbo.antennas (
	id BIGINT IDENTITY(1,1) PRIMARY KEY,
	[sequence] NVARCHAR(64) NOT NULL DEFAULT N'',
	position_code NVARCHAR(128) NOT NULL,
	category NVARCHAR(256) NOT NULL DEFAULT N'',
	company NVARCHAR(256) NOT NULL,
	address NVARCHAR(512) NOT NULL,
	municipality NVARCHAR(256) NOT NULL,
	scraped_at DATETIMEOFFSET NOT NULL DEFAULT SYSDATETIMEOFFSET(),
	CONSTRAINT uq_antennas_position_company UNIQUE (position_code, company)
)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table antennas: %w", err)
	}
	return nil
}

// insertStmt inserts one record, skipping it when the dedupe pair is already
// stored. @p2/@p4 in the NOT EXISTS clause must stay aligned with the
// position_code/company positions of storage.RecordArgs.
const insertStmt = `
INSERT INTO dbo.antennas ([sequence], position_code, category, company, address, municipality)
SELECT @p1, @p2, @p3, @p4, @p5, @p6
WHERE NOT EXISTS (
	SELECT 1 FROM dbo.antennas WHERE position_code = @p2 AND company = @p4
)`

func (r *Repo) InsertRecords(ctx context.Context, records []eett.AntennaRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert tx: %w", err)
	}

	var inserted int64
	for _, rec := range records {
		res, err := tx.ExecContext(ctx, insertStmt, storage.RecordArgs(rec)...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert antenna %s: %w", rec.PositionCode, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert tx: %w", err)
	}
	return inserted, nil
}
