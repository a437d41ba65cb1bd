package ddl

import (
	"strings"

	gddl "salesdw/internal/ddl"
	"salesdw/internal/schema"
)

// Dialect renders MySQL DDL with `backtick` quoting.
var Dialect = gddl.Dialect{Name: "mysql ddl", Quote: QuoteIdent}

// BuildCreateTableSQL builds a MySQL CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.CreateTable(t)
}

// CreateTableSQL renders the CREATE TABLE statement for a warehouse contract.
func CreateTableSQL(c schema.Contract) (string, error) {
	return BuildCreateTableSQL(gddl.FromContract(c, ColumnType))
}

// DropTableSQL renders DROP TABLE IF EXISTS for name.
func DropTableSQL(name string) string {
	return "DROP TABLE IF EXISTS " + Dialect.QuoteFQN(name)
}

// QuoteIdent backtick-quotes id, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
