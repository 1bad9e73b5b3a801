package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config is the minimal configuration needed to create a storage client.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Client is a backend-agnostic interface for the relational store the loader
// persists into.
//
// IMPORTANT: This interface is intentionally minimal and focused on the
// operations the loader needs. Each backend implements these semantics in its
// own idiomatic way (Postgres RETURNING, MySQL LastInsertId, MSSQL OUTPUT,
// etc).
type Client interface {
	// Close releases any backend resources (connections, prepared statements,
	// etc). Callers should treat Close as "call once".
	Close()

	// EnsureTables creates tables and constraints as needed, with
	// create-if-not-exists semantics. Specs must be given in parent-before-child
	// order so FK references resolve.
	EnsureTables(ctx context.Context, tables []TableSpec) error

	// DeleteAll removes every row from table and reports how many went away.
	// Callers are responsible for child-before-parent ordering.
	DeleteAll(ctx context.Context, table string) (int64, error)

	// InsertReturningIDs inserts rows in a single transaction and returns the
	// store-generated values of idColumn, in input order. On any error the
	// whole insert is rolled back and no ids are returned.
	InsertReturningIDs(ctx context.Context, table string, columns []string, rows [][]any, idColumn string) ([]int64, error)

	// InsertRows bulk-inserts rows in a single transaction. Returns the number
	// of rows written; on any error the whole insert is rolled back.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// CountRows returns the current row count of table.
	CountRows(ctx context.Context, table string) (int64, error)
}

// ---- backend factories ----

type factory func(ctx context.Context, cfg Config) (Client, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a storage backend under a kind (e.g. "mysql", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//   - The `kind` string becomes the lookup key used by New.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. This is intentional to fail fast and
//     avoid ambiguous backend selection.
func Register(kind string, f factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()

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

// New constructs a Client using the registered backend factory.
//
// Concurrency:
//   - Safe for concurrent use with Register. New takes a read lock while
//     selecting the factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Client, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	factoryMu.RLock()
	f := factories[cfg.Kind]
	factoryMu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
