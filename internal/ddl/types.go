package ddl

import "salesdw/internal/schema"

// ColumnDef describes a single column of a TableDef. Name is unquoted;
// quoting happens at render time. Default is raw SQL.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name and its ordered columns. FQN may be dotted
// ("schema.table"); dialects quote each segment.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// ColumnType maps one contract field to a dialect SQL type.
type ColumnType func(f schema.Field) string

// FromContract converts a warehouse contract into a TableDef using the
// dialect's type mapping. Required fields become NOT NULL.
func FromContract(c schema.Contract, typeOf ColumnType) TableDef {
	def := TableDef{FQN: c.Name, Columns: make([]ColumnDef, 0, len(c.Fields))}
	for _, f := range c.Fields {
		def.Columns = append(def.Columns, ColumnDef{
			Name:       f.Name,
			SQLType:    typeOf(f),
			Nullable:   !f.Required,
			PrimaryKey: f.PrimaryKey,
		})
	}
	return def
}
