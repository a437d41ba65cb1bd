// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	"salesdw/internal/schema"
)

// KeyTextType is used for text primary key columns; NVARCHAR(MAX) cannot be
// part of an index key.
const KeyTextType = "NVARCHAR(450)"

// MapType maps a logical type string into a SQL Server column type. Unknown
// or empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	case "float", "double", "real":
		return "FLOAT"
	default:
		return "NVARCHAR(MAX)"
	}
}

// ColumnType is the ddl.ColumnType for SQL Server.
func ColumnType(f schema.Field) string {
	t := MapType(f.Type)
	if f.PrimaryKey && t == "NVARCHAR(MAX)" {
		return KeyTextType
	}
	return t
}
