package ddl

import (
	"fmt"
	"strings"

	gddl "salesdw/internal/ddl"
	"salesdw/internal/schema"
)

// Dialect renders SQL Server DDL with [bracket] quoting.
var Dialect = gddl.Dialect{Name: "mssql ddl", Quote: QuoteIdent}

// BuildCreateTableSQL builds a CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return Dialect.CreateTable(t)
}

// CreateTableSQL renders the CREATE TABLE statement for a warehouse contract.
func CreateTableSQL(c schema.Contract) (string, error) {
	return BuildCreateTableSQL(gddl.FromContract(c, ColumnType))
}

// DropTableSQL renders a guarded drop:
//
//	IF OBJECT_ID(N'[dbo].[t]', N'U') IS NOT NULL DROP TABLE [dbo].[t];
func DropTableSQL(name string) string {
	q := Dialect.QuoteFQN(name)
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s;", strings.ReplaceAll(q, "'", "''"), q)
}

// QuoteIdent quotes id using [brackets], escaping ].
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
