package ddl

import (
	"strings"

	gddl "salesdw/internal/ddl"
	"salesdw/internal/schema"
)

// Dialect quotes identifiers with double quotes and creates STRICT tables.
var Dialect = gddl.Dialect{Name: "sqlite ddl", Quote: QuoteIdent, Suffix: " STRICT"}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for t:
//
//	CREATE TABLE "table" (
//	  "col1" TYPE [NOT NULL],
//	  PRIMARY KEY ("pk1", "pk2")
//	) STRICT;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.CreateTable(t)
}

// CreateTableSQL renders the CREATE TABLE statement for a warehouse contract.
func CreateTableSQL(c schema.Contract) (string, error) {
	return BuildCreateTableSQL(gddl.FromContract(c, ColumnType))
}

// DropTableSQL renders DROP TABLE IF EXISTS for name.
func DropTableSQL(name string) string {
	return "DROP TABLE IF EXISTS " + Dialect.QuoteFQN(name) + ";"
}

// QuoteIdent double-quotes id, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
