package dimension

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"salesdw/internal/config"
	"salesdw/internal/table"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestBuilder(mut ...func(*config.Transform)) *Builder {
	cfg := config.Default().Transform
	for _, m := range mut {
		m(&cfg)
	}
	return NewBuilder(cfg, WithClock(func() time.Time { return fixedNow }))
}

func col(t *testing.T, tb *table.Table, name string) []any {
	t.Helper()
	v, ok := tb.Column(name)
	if !ok {
		t.Fatalf("column %q missing from %v", name, tb.Columns)
	}
	return v
}

func TestCustomers(t *testing.T) {
	t.Parallel()

	raw := table.New(
		[]string{"Customer ID", "Name", "Email", "Telephone", "City", "Country", "Gender", "Date Of Birth", "Job Title"},
		[]any{"3", "Carla", "c@x", nil, "Lyon", "France", "F", "1990-01-01", nil},
		[]any{nil, "Ghost", nil, nil, nil, nil, nil, nil, nil},
		[]any{"1", "Ana", "a@x", "123", "Porto", "Portugal", "F", "1985-02-03", "Chef"},
	)
	got, err := newTestBuilder().Customers(raw)
	if err != nil {
		t.Fatalf("Customers: %v", err)
	}

	want := []string{"customer_id", "name", "email", "telephone", "city", "country", "gender", "date_of_birth", "job_title", "created_at", "updated_at"}
	if !reflect.DeepEqual(got.Columns, want) {
		t.Fatalf("columns = %v", got.Columns)
	}
	if ids := col(t, got, "customer_id"); !reflect.DeepEqual(ids, []any{int64(1), int64(3)}) {
		t.Fatalf("ids = %v, want null key dropped and sorted", ids)
	}
	if v := got.Value(1, "telephone"); v != "" {
		t.Fatalf("telephone = %#v, want empty string fill", v)
	}
	if v := got.Value(1, "job_title"); v != "" {
		t.Fatalf("job_title = %#v", v)
	}
	for i := range got.Rows {
		if got.Value(i, "created_at") != fixedNow || got.Value(i, "updated_at") != fixedNow {
			t.Fatalf("row %d audit = %v/%v", i, got.Value(i, "created_at"), got.Value(i, "updated_at"))
		}
	}
}

func TestCustomers_KeepsDuplicatesByDefault(t *testing.T) {
	t.Parallel()

	raw := table.New(
		[]string{"customer_id", "name", "email", "telephone", "city", "country", "gender", "date_of_birth", "job_title"},
		[]any{"2", "first", nil, nil, nil, nil, nil, nil, nil},
		[]any{"2", "second", nil, nil, nil, nil, nil, nil, nil},
	)
	got, err := newTestBuilder().Customers(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 2 {
		t.Fatalf("rows = %d, want both duplicates kept", got.Len())
	}

	deduped, err := newTestBuilder(func(c *config.Transform) { c.DedupPolicy = "keep-first" }).Customers(raw)
	if err != nil {
		t.Fatal(err)
	}
	if deduped.Len() != 1 || deduped.Value(0, "name") != "first" {
		t.Fatalf("keep-first result = %v", deduped.Rows)
	}
}

func TestDiscounts_RenamesAndKeysOnCategory(t *testing.T) {
	t.Parallel()

	raw := table.New(
		[]string{"Start", "End", "Discont", "Description", "Category", "Sub Category"},
		[]any{"2023-01-01", "2023-01-31", "20", "Winter", "Shoes", nil},
		[]any{"2023-02-01", "2023-02-28", "", "No category", nil, "Boots"},
		[]any{"2023-03-01", "2023-03-31", "15.5", nil, "Coats", "Wool"},
	)
	got, err := newTestBuilder().Discounts(raw)
	if err != nil {
		t.Fatalf("Discounts: %v", err)
	}
	if !reflect.DeepEqual(got.Columns[:6], []string{"start", "end_date", "discount", "description", "category", "sub_category"}) {
		t.Fatalf("columns = %v", got.Columns)
	}
	if cats := col(t, got, "category"); !reflect.DeepEqual(cats, []any{"Coats", "Shoes"}) {
		t.Fatalf("categories = %v", cats)
	}
	if d := col(t, got, "discount"); !reflect.DeepEqual(d, []any{15.5, 20.0}) {
		t.Fatalf("discounts = %v", d)
	}
	if got.Value(0, "description") != "" || got.Value(1, "sub_category") != "" {
		t.Fatalf("descriptives not filled: %v", got.Rows)
	}
}

func TestEmployees(t *testing.T) {
	t.Parallel()

	raw := table.New(
		[]string{"Employee ID", "Store ID", "Name", "Position", "Extra"},
		[]any{"10", "1", "Bo", "Seller", "x"},
		[]any{"2", "1", nil, nil, "y"},
	)
	got, err := newTestBuilder().Employees(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.Has("extra") {
		t.Fatal("unprojected column leaked")
	}
	if ids := col(t, got, "employee_id"); !reflect.DeepEqual(ids, []any{int64(2), int64(10)}) {
		t.Fatalf("ids = %v, want numeric order", ids)
	}
	if got.Value(0, "store_id") != int64(1) || got.Value(0, "name") != "" {
		t.Fatalf("row 0 = %v", got.Rows[0])
	}
}

func TestProducts_SizesRenamed(t *testing.T) {
	t.Parallel()

	raw := table.New(
		[]string{"Product ID", "Category", "Sub Category", "Description PT", "Description DE", "Description FR", "Description ES", "Description EN", "Description ZH", "Color", "Sizes", "Production Cost"},
		[]any{"7", "Feminine", "Coats", "pt", "de", "fr", "es", "en", "zh", nil, "S|M|L", "10.25"},
	)
	got, err := newTestBuilder().Products(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Has("size") || got.Has("sizes") {
		t.Fatalf("columns = %v", got.Columns)
	}
	if got.Value(0, "size") != "S|M|L" || got.Value(0, "color") != "" || got.Value(0, "production_cost") != 10.25 {
		t.Fatalf("row = %v", got.Rows[0])
	}
}

func TestStores(t *testing.T) {
	t.Parallel()

	raw := table.New(
		[]string{"Store ID", "Country", "City", "Store Name", "Number of Employees", "ZIP Code", "Latitude", "Longitude"},
		[]any{"2", "USA", "New York", "Store NY", "10", "10001", "40.7", "-74.0"},
		[]any{"1", "Germany", "Berlin", "Store Berlin", "8", nil, "52.5", "13.4"},
	)
	got, err := newTestBuilder().Stores(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.Value(0, "store_id") != int64(1) || got.Value(0, "zip_code") != "" {
		t.Fatalf("row 0 = %v", got.Rows[0])
	}
	if got.Value(1, "zip_code") != "10001" || got.Value(1, "latitude") != 40.7 || got.Value(1, "number_of_employees") != int64(10) {
		t.Fatalf("row 1 = %v", got.Rows[1])
	}
}

func TestBuild_MissingColumn(t *testing.T) {
	t.Parallel()

	raw := table.New([]string{"store_id", "country"}, []any{"1", "USA"})
	if _, err := newTestBuilder().Stores(raw); !errors.Is(err, table.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
	if _, err := newTestBuilder().Stores(nil); err == nil {
		t.Fatal("nil input must fail")
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	t.Parallel()

	raw := table.New([]string{"employee_id", "store_id", "name", "position"})
	got, err := newTestBuilder().Employees(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 || len(got.Columns) != 6 {
		t.Fatalf("got %v rows, columns %v", got.Len(), got.Columns)
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	raw := table.New([]string{"Employee ID", "Store ID", "Name", "Position"}, []any{"1", "2", nil, "x"})
	before := raw.Clone()
	if _, err := newTestBuilder().Employees(raw); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(raw, before) {
		t.Fatalf("input mutated: %v", raw)
	}
}
