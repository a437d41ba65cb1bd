package storage

import (
	"fmt"
	"sync"

	"salesdw/internal/schema"
)

// DDLRenderer renders the CREATE TABLE statement a backend issues for a
// contract.
type DDLRenderer func(c schema.Contract) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLRenderer{}
)

// RegisterDDL registers (or replaces) the DDLRenderer for kind. Backends call
// it from init() next to Register.
func RegisterDDL(kind string, fn DDLRenderer) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// RenderDDL renders c with the renderer registered for kind. It needs no
// connection, which makes it usable for dry runs.
func RenderDDL(kind string, c schema.Contract) (string, error) {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no DDL renderer registered for storage.kind=%q", kind)
	}
	return fn(c)
}
