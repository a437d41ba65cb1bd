package ddl

import (
	"strings"
	"testing"

	"salesdw/internal/schema"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns",
			def:         TableDef{FQN: "t"},
			errContains: "at least one column is required",
		},
		{
			name:        "empty column name",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "INT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "empty column type",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing SQLType",
		},
		{
			name:    "nullable column",
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id", SQLType: "INT", Nullable: true}}},
			wantSQL: "CREATE TABLE t (\n  id INT\n);",
		},
		{
			name: "default and not null",
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "created_at", SQLType: "TIMESTAMP", Default: " CURRENT_TIMESTAMP "},
			}},
			wantSQL: "CREATE TABLE t (\n  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP\n);",
		},
		{
			name: "composite primary key",
			def: TableDef{FQN: " fact_transactions ", Columns: []ColumnDef{
				{Name: "invoice_id", SQLType: "TEXT", PrimaryKey: true},
				{Name: "line_item", SQLType: "INT", PrimaryKey: true},
				{Name: "quantity", SQLType: "INT", Nullable: true},
			}},
			wantSQL: "CREATE TABLE fact_transactions (\n  invoice_id TEXT NOT NULL,\n  line_item INT NOT NULL,\n  quantity INT,\n  PRIMARY KEY (invoice_id, line_item)\n);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildCreateTableSQL(tt.def)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error = %v, want substring %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("got:\n%s\nwant:\n%s", got, tt.wantSQL)
			}
		})
	}
}

func TestDialect_QuotingAndSuffix(t *testing.T) {
	t.Parallel()

	d := Dialect{
		Name:   "test ddl",
		Quote:  func(s string) string { return "[" + s + "]" },
		Suffix: " WITH x",
	}
	got, err := d.CreateTable(TableDef{FQN: "dbo.dim_date", Columns: []ColumnDef{
		{Name: "date_key", SQLType: "NVARCHAR(8)", PrimaryKey: true},
	}})
	if err != nil {
		t.Fatal(err)
	}
	want := "CREATE TABLE [dbo].[dim_date] (\n  [date_key] NVARCHAR(8) NOT NULL,\n  PRIMARY KEY ([date_key])\n) WITH x;"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	if _, err := d.CreateTable(TableDef{}); err == nil || !strings.HasPrefix(err.Error(), "test ddl:") {
		t.Fatalf("error prefix: %v", err)
	}
}

func TestFromContract(t *testing.T) {
	t.Parallel()

	c, _ := schema.Lookup("fact_transactions")
	def := FromContract(c, func(f schema.Field) string { return strings.ToUpper(f.Type) })

	if def.FQN != "fact_transactions" || len(def.Columns) != len(c.Fields) {
		t.Fatalf("def = %+v", def)
	}
	first := def.Columns[0]
	if first.Name != "invoice_id" || first.SQLType != "TEXT" || first.Nullable || !first.PrimaryKey {
		t.Fatalf("first column = %+v", first)
	}
	for _, col := range def.Columns[2:] {
		if !col.Nullable || col.PrimaryKey {
			t.Fatalf("non-key column %+v should be nullable", col)
		}
	}
}
