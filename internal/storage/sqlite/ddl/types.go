// Package ddl contains SQLite-specific helpers for generating DDL.
//
// Warehouse tables are created STRICT, so every column uses one of the
// strict type names and a value of the wrong kind fails the insert instead
// of being stored with a different affinity.
package ddl

import (
	"strings"

	"salesdw/internal/schema"
)

// MapType maps a logical type into a STRICT SQLite column type:
//   - int, bool        -> INTEGER (bool as 0/1)
//   - float            -> REAL
//   - date, timestamp  -> TEXT (ISO-8601)
//   - others           -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint", "bool", "boolean":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	default:
		return "TEXT"
	}
}

// ColumnType is the ddl.ColumnType for SQLite.
func ColumnType(f schema.Field) string { return MapType(f.Type) }
