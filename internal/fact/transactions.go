// Package fact builds fact_transactions from transaction line items and the
// exchange-rate reference table.
package fact

import (
	"fmt"
	"time"

	"salesdw/internal/config"
	"salesdw/internal/dimension"
	"salesdw/internal/schema"
	"salesdw/internal/table"
	"salesdw/internal/transformer/builtin"
)

// TableName is the warehouse name of the transactions fact.
const TableName = "fact_transactions"

// Option configures a Builder.
type Option func(*Builder)

// WithClock replaces time.Now as the source of the audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// Builder derives the transactions fact.
type Builder struct {
	conversion string
	now        func() time.Time
}

// NewBuilder returns a Builder using cfg.Conversion. An empty conversion
// means config.ConversionSingle.
func NewBuilder(cfg config.Transform, opts ...Option) *Builder {
	b := &Builder{conversion: cfg.Conversion, now: time.Now}
	if b.conversion == "" {
		b.conversion = config.ConversionSingle
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

var lineItem = []table.Col{
	table.C("invoice_id"),
	table.Alias("line_item", "line", "line_item"),
	table.C("customer_id"),
	table.C("product_id"),
	table.C("quantity"),
	table.C("date"),
	table.C("discount"),
	table.C("line_total"),
	table.C("store_id"),
	table.C("employee_id"),
	table.C("currency"),
	table.Alias("stock_keeping_unit", "sku", "stock_keeping_unit"),
	table.C("transaction_type"),
	table.C("payment_method"),
	table.C("unit_price"),
}

// Transactions joins tx with rates on currency and derives the USD metrics.
//
// Rows whose currency has no rate keep a null rate_to_usd and null USD
// metrics; they are never dropped. A currency listed twice in rates yields
// one output row per rate.
func (b *Builder) Transactions(tx, rates *table.Table) (*table.Table, error) {
	if tx == nil || rates == nil {
		return nil, fmt.Errorf("%s: transactions and exchange_rates are both required", TableName)
	}
	contract, ok := schema.Lookup(TableName)
	if !ok {
		return nil, fmt.Errorf("%s: no warehouse contract", TableName)
	}

	items, err := builtin.NormalizeColumns(tx).Select(lineItem...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", TableName, err)
	}
	if items, err = (builtin.Coerce{Types: contract.Types()}).Apply(items); err != nil {
		return nil, fmt.Errorf("%s: %w", TableName, err)
	}

	now := b.now()
	items = items.WithValue("created_at", now).WithValue("updated_at", now)
	di := items.Index("date")
	items = items.WithColumn("date_key", func(r []any) any {
		if d, ok := r[di].(time.Time); ok {
			return dimension.DateKey(d)
		}
		return nil
	})

	rateTable, err := builtin.NormalizeColumns(rates).Select(table.C("currency"), table.C("rate_to_usd"))
	if err != nil {
		return nil, fmt.Errorf("%s: exchange_rates: %w", TableName, err)
	}
	if rateTable, err = (builtin.Coerce{Types: map[string]string{
		"currency":    schema.TypeText,
		"rate_to_usd": schema.TypeFloat,
	}}).Apply(rateTable); err != nil {
		return nil, fmt.Errorf("%s: exchange_rates: %w", TableName, err)
	}

	joined, err := items.LeftJoin(rateTable, "currency", "rate_to_usd")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", TableName, err)
	}

	out := b.derive(joined)
	if out, err = out.Select(contractCols(contract)...); err != nil {
		return nil, fmt.Errorf("%s: %w", TableName, err)
	}
	return out.SortBy("date_key")
}

// derive adds unit_price_usd and the three line metrics.
func (b *Builder) derive(t *table.Table) *table.Table {
	qty, price, disc, rate := t.Index("quantity"), t.Index("unit_price"), t.Index("discount"), t.Index("rate_to_usd")
	double := b.conversion == config.ConversionDouble

	t = t.WithColumn("unit_price_usd", func(r []any) any { return mul(r[price], r[rate]) })
	usd := t.Index("unit_price_usd")

	// gross is the pre-discount line amount in USD.
	gross := func(r []any) any {
		g := mul(r[qty], r[usd])
		if double {
			g = mul(g, r[rate])
		}
		return g
	}
	t = t.WithColumn("total_revenue_usd", gross)
	t = t.WithColumn("net_amount_usd", func(r []any) any {
		d, ok := num(r[disc])
		if !ok {
			return nil
		}
		return mul(gross(r), 1-d/100)
	})
	return t.WithColumn("discount_usd", func(r []any) any {
		d, ok := num(r[disc])
		if !ok {
			return nil
		}
		return mul(gross(r), d/100)
	})
}

func contractCols(c schema.Contract) []table.Col {
	cols := make([]table.Col, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = table.C(f.Name)
	}
	return cols
}

// mul multiplies two numeric cells; a null or non-numeric operand yields null.
func mul(a, b any) any {
	x, ok := num(a)
	if !ok {
		return nil
	}
	y, ok := num(b)
	if !ok {
		return nil
	}
	return x * y
}

func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}
