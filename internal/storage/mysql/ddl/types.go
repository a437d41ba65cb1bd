// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	"salesdw/internal/schema"
)

// KeyTextType is used for text primary key columns; TEXT cannot be indexed
// without a prefix length.
const KeyTextType = "VARCHAR(255)"

// MapType maps a logical type into a MySQL column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "datetime":
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}

// ColumnType is the ddl.ColumnType for MySQL.
func ColumnType(f schema.Field) string {
	t := MapType(f.Type)
	if f.PrimaryKey && t == "TEXT" {
		return KeyTextType
	}
	return t
}
