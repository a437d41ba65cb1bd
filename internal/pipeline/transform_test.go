package pipeline

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"salesdw/internal/config"
	"salesdw/internal/datasource"
	"salesdw/internal/table"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func rawInputs() map[string]*table.Table {
	return map[string]*table.Table{
		datasource.Customers: table.New(
			[]string{"Customer ID", "Name", "Email", "Telephone", "City", "Country", "Gender", "Date Of Birth", "Job Title"},
			[]any{"1", "Ana", "a@x", nil, "Porto", "Portugal", "F", "1985-02-03", nil},
		),
		datasource.Discounts: table.New(
			[]string{"Start", "End", "Discont", "Description", "Category", "Sub Category"},
			[]any{"2023-01-01", "2023-01-31", "20", "Winter", "Shoes", nil},
		),
		datasource.Employees: table.New(
			[]string{"Employee ID", "Store ID", "Name", "Position"},
			[]any{"7", "1", "Bo", "Seller"},
		),
		datasource.Products: table.New(
			[]string{"Product ID", "Category", "Sub Category", "Description PT", "Description DE", "Description FR", "Description ES", "Description EN", "Description ZH", "Color", "Sizes", "Production Cost"},
			[]any{"20", "Feminine", "Coats", nil, nil, nil, nil, "Coat", nil, "Red", "M", "12.5"},
		),
		datasource.Stores: table.New(
			[]string{"Store ID", "Country", "City", "Store Name", "Number of Employees", "ZIP Code", "Latitude", "Longitude"},
			[]any{"1", "USA", "New York", "Store NY", "10", "10001", "40.7", "-74.0"},
		),
		datasource.Transactions: table.New(
			[]string{"Invoice ID", "Line", "Customer ID", "Product ID", "Quantity", "Date", "Discount", "Line Total", "Store ID", "Employee ID", "Currency", "SKU", "Transaction Type", "Payment Method", "Unit Price"},
			[]any{"INV-1", "1", "1", "20", "2", "2023-01-02 10:00:00", "0", "25", "1", "7", "USD", "SKU", "Sale", "Cash", "12.5"},
		),
		datasource.ExchangeRates: table.New(
			[]string{"Currency", "Rate to USD"},
			[]any{"USD", "1"},
		),
	}
}

func names(m map[string]*table.Table) []string {
	var out []string
	for n := range m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func newTestTransformer() *Transformer {
	return NewTransformer(config.Default().Transform, zerolog.Nop(), func() time.Time { return fixedNow })
}

func TestTransformAll_BuildsEveryTable(t *testing.T) {
	t.Parallel()

	got, err := newTestTransformer().TransformAll(rawInputs())
	if err != nil {
		t.Fatalf("TransformAll: %v", err)
	}
	want := []string{"dim_customers", "dim_date", "dim_discounts", "dim_employees", "dim_products", "dim_stores", "fact_transactions"}
	if n := names(got); !equal(n, want) {
		t.Fatalf("tables = %v, want %v", n, want)
	}
	if got["dim_date"].Len() != 1096 {
		t.Fatalf("dim_date rows = %d", got["dim_date"].Len())
	}
}

func TestTransformAll_SkipsAbsentInputs(t *testing.T) {
	t.Parallel()

	raw := rawInputs()
	delete(raw, datasource.Employees)
	delete(raw, datasource.ExchangeRates)

	got, err := newTestTransformer().TransformAll(raw)
	if err != nil {
		t.Fatalf("TransformAll: %v", err)
	}
	if _, ok := got["dim_employees"]; ok {
		t.Fatal("dim_employees built without input")
	}
	if _, ok := got["fact_transactions"]; ok {
		t.Fatal("fact built without exchange rates")
	}
	if _, ok := got["dim_date"]; !ok {
		t.Fatal("dim_date must always be built")
	}

	only, err := newTestTransformer().TransformAll(nil)
	if err != nil || !equal(names(only), []string{"dim_date"}) {
		t.Fatalf("empty raw = %v, %v", names(only), err)
	}
}

func TestTransformAll_FailingBuilderIsSkipped(t *testing.T) {
	t.Parallel()

	raw := rawInputs()
	raw[datasource.Stores] = table.New([]string{"store_id"}, []any{"1"})

	got, err := newTestTransformer().TransformAll(raw)
	if !errors.Is(err, table.ErrMissingColumn) {
		t.Fatalf("err = %v, want joined ErrMissingColumn", err)
	}
	if _, ok := got["dim_stores"]; ok {
		t.Fatal("failed dimension must be left out")
	}
	if len(got) != 6 {
		t.Fatalf("tables = %v, want the other six", names(got))
	}
	if countJoined(err) != 1 {
		t.Fatalf("countJoined = %d", countJoined(err))
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
