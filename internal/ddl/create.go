// Package ddl defines a small, backend-agnostic model for SQL DDL and a
// renderer for CREATE TABLE statements.
//
// Backend packages (internal/storage/<kind>/ddl) supply a Dialect with their
// identifier quoting and table suffix, and a ColumnType mapping from logical
// contract types to SQL types.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect controls how BuildCreateTableSQL output is spelled.
type Dialect struct {
	// Name prefixes error messages, e.g. "sqlite ddl".
	Name string

	// Quote quotes a single identifier segment. Nil emits names as-is.
	Quote func(string) string

	// Suffix is appended after the closing parenthesis, e.g. " STRICT".
	Suffix string
}

// BuildCreateTableSQL renders a CREATE TABLE statement without quoting.
func BuildCreateTableSQL(t TableDef) (string, error) {
	return Dialect{Name: "ddl"}.CreateTable(t)
}

// CreateTable renders:
//
//	CREATE TABLE <fqn> (
//	  <col> <type> [NOT NULL] [DEFAULT <expr>],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	)<suffix>;
//
// Names, types and defaults are trimmed. Primary key columns are collected in
// declaration order into a table constraint.
func (d Dialect) CreateTable(t TableDef) (string, error) {
	name := d.Name
	if name == "" {
		name = "ddl"
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", name, col)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(col))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(col))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)%s;", d.QuoteFQN(fqn), strings.Join(cols, ",\n  "), d.Suffix), nil
}

// QuoteFQN quotes each dotted segment of fqn.
func (d Dialect) QuoteFQN(fqn string) string {
	if d.Quote == nil {
		return strings.TrimSpace(fqn)
	}
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, d.Quote(p))
		}
	}
	return strings.Join(out, ".")
}

func (d Dialect) quote(id string) string {
	if d.Quote == nil {
		return id
	}
	return d.Quote(id)
}
