// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	"salesdw/internal/schema"
)

// MapType normalizes a logical type into a Postgres SQL type.
//
//	"int"/"integer"/"bigint" -> BIGINT
//	"float"/"double"         -> DOUBLE PRECISION
//	"bool"/"boolean"         -> BOOLEAN
//	"date"                   -> DATE
//	"timestamp"              -> TIMESTAMP
//	everything else          -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE PRECISION"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp":
		return "TIMESTAMP"
	case "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// ColumnType is the ddl.ColumnType for Postgres.
func ColumnType(f schema.Field) string { return MapType(f.Type) }
