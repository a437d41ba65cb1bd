package schema

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"salesdw/internal/table"
)

func TestWarehouse_Contracts(t *testing.T) {
	t.Parallel()

	cs := Warehouse()
	var names []string
	for _, c := range cs {
		names = append(names, c.Name)
	}
	want := []string{"dim_customers", "dim_date", "dim_discounts", "dim_employees", "dim_products", "dim_stores", "fact_transactions"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("tables = %v, want %v", names, want)
	}

	pks := map[string][]string{
		"dim_date":          {"date_key"},
		"dim_customers":     {"customer_id"},
		"dim_discounts":     {"category"},
		"dim_employees":     {"employee_id"},
		"dim_products":      {"product_id"},
		"dim_stores":        {"store_id"},
		"fact_transactions": {"invoice_id", "line_item"},
	}
	for _, c := range cs {
		if got := c.PrimaryKey(); !reflect.DeepEqual(got, pks[c.Name]) {
			t.Errorf("%s primary key = %v, want %v", c.Name, got, pks[c.Name])
		}
		seen := map[string]bool{}
		for _, f := range c.Fields {
			if seen[f.Name] {
				t.Errorf("%s: duplicate column %s", c.Name, f.Name)
			}
			seen[f.Name] = true
			if f.PrimaryKey && !f.Required {
				t.Errorf("%s.%s: key column must be required", c.Name, f.Name)
			}
		}
		if strings.HasPrefix(c.Name, "dim_") && c.Name != "dim_date" {
			if !seen["created_at"] || !seen["updated_at"] {
				t.Errorf("%s lacks audit columns", c.Name)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	c, ok := Lookup("dim_discounts")
	if !ok {
		t.Fatal("dim_discounts not found")
	}
	if f, ok := c.Field("discount"); !ok || f.Type != TypeFloat {
		t.Fatalf("discount field = %+v, %v", f, ok)
	}
	if _, ok := c.Field("discont"); ok {
		t.Fatal("source spelling must not be a warehouse column")
	}
	if _, ok := Lookup("staging_x"); ok {
		t.Fatal("unexpected contract")
	}
}

func TestContract_Types(t *testing.T) {
	t.Parallel()

	c := Contract{Fields: []Field{{Name: "a", Type: TypeInt}, {Name: "b", Type: TypeText}}}
	if got := c.Types(); !reflect.DeepEqual(got, map[string]string{"a": "int", "b": "text"}) {
		t.Fatalf("Types() = %v", got)
	}
	if got := c.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Names() = %v", got)
	}
}

func TestInfer(t *testing.T) {
	t.Parallel()

	tbl := table.New([]string{"id", "amount", "label", "flag", "at", "empty"},
		[]any{int64(1), int64(3), "x", true, time.Now(), nil},
		[]any{int64(2), 2.5, int64(9), false, nil, nil},
	)
	c := Infer("staging", tbl)
	got := map[string]string{}
	for _, f := range c.Fields {
		got[f.Name] = f.Type
	}
	want := map[string]string{
		"id":     TypeInt,
		"amount": TypeFloat,
		"label":  TypeText,
		"flag":   TypeBool,
		"at":     TypeTimestamp,
		"empty":  TypeText,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("inferred %v, want %v", got, want)
	}
	if c.Name != "staging" || len(c.PrimaryKey()) != 0 {
		t.Fatalf("contract = %+v", c)
	}
}
