package schema

import (
	"time"

	"salesdw/internal/table"
)

// Infer derives a contract for a table that has no declared one. Each column
// gets the narrowest logical type that fits every non-null cell; columns with
// only nulls are text. No primary key is inferred.
func Infer(name string, t *table.Table) Contract {
	c := Contract{Name: name}
	if t == nil {
		return c
	}
	for j, col := range t.Columns {
		c.Fields = append(c.Fields, Field{Name: col, Type: inferColumn(t.Rows, j)})
	}
	return c
}

func inferColumn(rows [][]any, j int) string {
	typ := ""
	for _, r := range rows {
		var k string
		switch r[j].(type) {
		case nil:
			continue
		case int64, int, int32:
			k = TypeInt
		case float64, float32:
			k = TypeFloat
		case bool:
			k = TypeBool
		case time.Time:
			k = TypeTimestamp
		default:
			return TypeText
		}
		switch {
		case typ == "" || typ == k:
			typ = k
		case (typ == TypeInt && k == TypeFloat) || (typ == TypeFloat && k == TypeInt):
			typ = TypeFloat
		default:
			return TypeText
		}
	}
	if typ == "" {
		return TypeText
	}
	return typ
}
