// Package store is the persistence collaborator. It exposes row-oriented
// tables (select-all, insert, partial update, delete) and translates between
// canonical models and their storage shape.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"
)

// Record is implemented by every storage row type.
type Record[R any] interface {
	// RowID returns the persisted identifier, empty before insert.
	RowID() string
	// WithID returns a copy of the row carrying id.
	WithID(id string) R
	// Apply merges a set of storage columns into a copy of the row.
	Apply(columns map[string]any) (R, error)
}

// Table is a CRUD view over one kind of row.
type Table[R any] interface {
	SelectAll(ctx context.Context) ([]R, error)
	// Insert stores rows and returns the assigned ids in input order. Rows
	// that already carry an id keep it.
	Insert(ctx context.Context, rows ...R) ([]string, error)
	// Update writes only the given columns of row id.
	Update(ctx context.Context, id string, columns map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Backend groups the tables of one persistence backend.
type Backend interface {
	Transactions() Table[TransactionRow]
	Categories() Table[CategoryRow]
	MerchantMappings() Table[MerchantMappingRow]
	Close() error
}

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Driver     string
	SQLitePath string
	Postgres   PostgresConfig
}

// Open creates the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (Backend, error) {
	logger = logging.OrDefault(logger).WithField(logging.FieldComponent, "store")

	switch strings.ToLower(cfg.Driver) {
	case "", DriverMemory:
		logger.Info("Using in-memory store")
		return NewMemoryBackend(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, logger)
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
