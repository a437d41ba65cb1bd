// Package schema holds the persisted structural contract of the warehouse:
// table names, ordered columns, logical types and primary keys.
//
// Logical types are backend-neutral: "int", "float", "text", "bool", "date"
// and "timestamp". Each storage backend maps them to its own SQL types.
package schema

// Logical column types.
const (
	TypeInt       = "int"
	TypeFloat     = "float"
	TypeText      = "text"
	TypeBool      = "bool"
	TypeDate      = "date"
	TypeTimestamp = "timestamp"
)

// Field is one column of a Contract.
type Field struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Required   bool   `json:"required,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
}

// Contract is the definition of one warehouse table.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Names returns the column names in declaration order.
func (c Contract) Names() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// Field returns the field called name.
func (c Contract) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// PrimaryKey returns the primary key columns in declaration order.
func (c Contract) PrimaryKey() []string {
	var pk []string
	for _, f := range c.Fields {
		if f.PrimaryKey {
			pk = append(pk, f.Name)
		}
	}
	return pk
}

// Types maps column name to logical type, the shape builtin.Coerce expects.
func (c Contract) Types() map[string]string {
	m := make(map[string]string, len(c.Fields))
	for _, f := range c.Fields {
		m[f.Name] = f.Type
	}
	return m
}
