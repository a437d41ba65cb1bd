// Package dimension builds the dim_* tables of the warehouse from raw input
// tables, and generates the date dimension.
//
// Every raw builder runs the same steps: normalize column names, project and
// rename the dimension's columns, coerce them to the warehouse types, fill
// text descriptives with "", stamp created_at/updated_at, drop rows with a
// null natural key, optionally de-duplicate, and sort by the natural key.
package dimension

import (
	"fmt"
	"strings"
	"time"

	"salesdw/internal/config"
	"salesdw/internal/schema"
	"salesdw/internal/table"
	"salesdw/internal/transformer"
	"salesdw/internal/transformer/builtin"
)

// Option configures a Builder.
type Option func(*Builder)

// WithClock replaces time.Now as the source of the audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// Builder holds the transform settings shared by every dimension.
type Builder struct {
	cfg config.Transform
	now func() time.Time
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg config.Transform, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(b)
	}
	return b
}

// recipe is the fixed mapping of one raw table onto a dimension.
type recipe struct {
	name string
	key  string
	cols []table.Col
}

var (
	customers = recipe{
		name: "dim_customers",
		key:  "customer_id",
		cols: []table.Col{
			table.C("customer_id"),
			table.Alias("name", "name", "customer_name"),
			table.C("email"),
			table.C("telephone"),
			table.C("city"),
			table.C("country"),
			table.C("gender"),
			table.C("date_of_birth"),
			table.C("job_title"),
		},
	}
	discounts = recipe{
		name: "dim_discounts",
		key:  "category",
		cols: []table.Col{
			table.C("start"),
			table.Alias("end_date", "end", "end_date"),
			table.Alias("discount", "discont", "discount"),
			table.C("description"),
			table.C("category"),
			table.C("sub_category"),
		},
	}
	employees = recipe{
		name: "dim_employees",
		key:  "employee_id",
		cols: []table.Col{
			table.C("employee_id"),
			table.C("store_id"),
			table.C("name"),
			table.C("position"),
		},
	}
	products = recipe{
		name: "dim_products",
		key:  "product_id",
		cols: []table.Col{
			table.C("product_id"),
			table.C("category"),
			table.C("sub_category"),
			table.C("description_pt"),
			table.C("description_de"),
			table.C("description_fr"),
			table.C("description_es"),
			table.C("description_en"),
			table.C("description_zh"),
			table.C("color"),
			table.Alias("size", "sizes", "size"),
			table.C("production_cost"),
		},
	}
	stores = recipe{
		name: "dim_stores",
		key:  "store_id",
		cols: []table.Col{
			table.C("store_id"),
			table.C("country"),
			table.C("city"),
			table.C("store_name"),
			table.C("number_of_employees"),
			table.C("zip_code"),
			table.C("latitude"),
			table.C("longitude"),
		},
	}
)

// Customers builds dim_customers.
func (b *Builder) Customers(raw *table.Table) (*table.Table, error) { return b.build(raw, customers) }

// Discounts builds dim_discounts. The source spells the discount column
// "discont" and the end column "end"; both spellings are accepted.
func (b *Builder) Discounts(raw *table.Table) (*table.Table, error) { return b.build(raw, discounts) }

// Employees builds dim_employees.
func (b *Builder) Employees(raw *table.Table) (*table.Table, error) { return b.build(raw, employees) }

// Products builds dim_products; "sizes" is renamed to "size".
func (b *Builder) Products(raw *table.Table) (*table.Table, error) { return b.build(raw, products) }

// Stores builds dim_stores.
func (b *Builder) Stores(raw *table.Table) (*table.Table, error) { return b.build(raw, stores) }

func (b *Builder) build(raw *table.Table, r recipe) (*table.Table, error) {
	if raw == nil {
		return nil, fmt.Errorf("%s: nil input table", r.name)
	}
	contract, ok := schema.Lookup(r.name)
	if !ok {
		return nil, fmt.Errorf("%s: no warehouse contract", r.name)
	}

	projected, err := builtin.NormalizeColumns(raw).Select(r.cols...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}

	steps := transformer.Chain{
		builtin.Coerce{Types: contract.Types()},
		transformer.Func(func(t *table.Table) (*table.Table, error) {
			return fillDescriptives(t, contract), nil
		}),
		transformer.Func(b.stamp),
		transformer.Func(func(t *table.Table) (*table.Table, error) {
			return t.Filter(t.NotNull(r.key)), nil
		}),
	}
	if p := strings.TrimSpace(b.cfg.DedupPolicy); p != "" && p != builtin.PolicyNone {
		steps = append(steps, builtin.DeDup{Keys: []string{r.key}, Policy: p})
	}

	out, err := steps.Apply(projected)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}
	if out, err = out.SortBy(r.key); err != nil {
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}
	return out, nil
}

// stamp adds created_at and updated_at, both set to one clock reading.
func (b *Builder) stamp(t *table.Table) (*table.Table, error) {
	now := b.now()
	return t.WithValue("created_at", now).WithValue("updated_at", now), nil
}

// fillDescriptives replaces nulls with "" in every text column that is not
// part of the primary key.
func fillDescriptives(t *table.Table, c schema.Contract) *table.Table {
	for _, f := range c.Fields {
		if f.Type == schema.TypeText && !f.PrimaryKey {
			t = t.FillNull(f.Name, "")
		}
	}
	return t
}
