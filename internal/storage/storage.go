// Package storage persists scraped antenna records to a relational backend.
//
// Backends register themselves by kind from init functions (see the sqlite,
// postgres and mssql subpackages); the scraper selects one by name at
// startup. This keeps the CLI free of driver-specific imports except for the
// single blank import of storage/all.
package storage

import (
	"context"
	"fmt"
	"sync"

	"eettscrape/internal/eett"
)

// Config selects and configures a backend.
//
// Kind must match a registered backend kind ("sqlite", "postgres", "mssql");
// DSN is passed through to the backend factory and validated there.
type Config struct {
	Kind string
	DSN  string
}

// Repository is the backend-agnostic persistence interface.
//
// Implementations make InsertRecords idempotent over re-scrapes of the same
// municipality: a record with an already-stored (position_code, company) pair
// is silently skipped, each backend using its own conflict idiom.
type Repository interface {
	// EnsureSchema creates the antennas table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// InsertRecords stores records and returns how many rows were actually
	// inserted (duplicates excluded).
	InsertRecords(ctx context.Context, records []eett.AntennaRecord) (int64, error)

	// Close releases backend resources. Call once at shutdown.
	Close()
}

// Columns is the antennas table's column order, shared by all backends so
// insert statements and tests agree.
var Columns = []string{
	"sequence",
	"position_code",
	"category",
	"company",
	"address",
	"municipality",
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind. It is meant to be called from a
// backend package's init function.
//
// Panics:
//   - If kind is empty or f is nil.
//   - If kind is already registered. Failing fast avoids ambiguous backend
//     selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository using the registered factory for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%q", cfg.Kind)
	}
	return f(ctx, cfg)
}

// RecordArgs flattens a record into insert arguments in Columns order.
func RecordArgs(rec eett.AntennaRecord) []any {
	return []any{
		rec.Sequence,
		rec.PositionCode,
		rec.Category,
		rec.Company,
		rec.Address,
		rec.Municipality,
	}
}
