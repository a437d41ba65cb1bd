package ddl

import (
	"strings"

	gddl "salesdw/internal/ddl"
	"salesdw/internal/schema"
)

// Dialect renders Postgres DDL with double-quoted identifiers.
var Dialect = gddl.Dialect{Name: "postgres ddl", Quote: QuoteIdent}

// BuildCreateTableSQL builds a Postgres CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.CreateTable(t)
}

// CreateTableSQL renders the CREATE TABLE statement for a warehouse contract.
func CreateTableSQL(c schema.Contract) (string, error) {
	return BuildCreateTableSQL(gddl.FromContract(c, ColumnType))
}

// DropTableSQL renders DROP TABLE IF EXISTS for a possibly schema-qualified
// name.
func DropTableSQL(name string) string {
	return "DROP TABLE IF EXISTS " + Dialect.QuoteFQN(name)
}

// QuoteIdent quotes a single identifier segment, e.g.:
//
//	QuoteIdent(`store_id`)   => `"store_id"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
