// Package storage contains the storage-agnostic warehouse contract and the
// registry that maps a storage kind ("sqlite", "postgres", ...) to a backend
// factory. Backends register themselves from init(); import
// salesdw/internal/storage/all to link every backend in.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"salesdw/internal/schema"
)

// DefaultBatchSize bounds the rows sent per bulk statement by backends that
// insert in chunks.
const DefaultBatchSize = 1000

// Repository is a handle to one warehouse. Implementations hold a single
// connection and are not safe for concurrent use.
type Repository interface {
	// ReplaceTable drops the table named by c if it exists, creates it from
	// c and inserts rows aligned to columns. Backends with transactional DDL
	// do all three atomically. It returns the number of rows inserted.
	ReplaceTable(ctx context.Context, c schema.Contract, columns []string, rows [][]any) (int64, error)

	// Columns returns the persisted column names of table in ordinal order,
	// or an empty slice when the table does not exist.
	Columns(ctx context.Context, table string) ([]string, error)

	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind string
	DSN  string

	// BatchSize bounds rows per INSERT for chunking backends. Zero means
	// DefaultBatchSize.
	BatchSize int

	// Logger receives backend progress lines. The zero value discards.
	Logger zerolog.Logger
}

// Batch returns the effective batch size.
func (c Config) Batch() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
