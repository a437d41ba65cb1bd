// Package pipeline sequences one warehouse run: read raw inputs, build the
// dimension and fact tables, load them.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"salesdw/internal/config"
	"salesdw/internal/datasource"
	"salesdw/internal/dimension"
	"salesdw/internal/fact"
	"salesdw/internal/table"
)

// Transformer turns raw input tables into warehouse tables.
type Transformer struct {
	dims  *dimension.Builder
	facts *fact.Builder
	log   zerolog.Logger
}

// NewTransformer returns a Transformer for cfg. now, when non-nil, replaces
// time.Now for the audit timestamps of every builder.
func NewTransformer(cfg config.Transform, log zerolog.Logger, now func() time.Time) *Transformer {
	var (
		dopts []dimension.Option
		fopts []fact.Option
	)
	if now != nil {
		dopts = append(dopts, dimension.WithClock(now))
		fopts = append(fopts, fact.WithClock(now))
	}
	return &Transformer{
		dims:  dimension.NewBuilder(cfg, dopts...),
		facts: fact.NewBuilder(cfg, fopts...),
		log:   log,
	}
}

type dimStep struct {
	input, output string
	build         func(*table.Table) (*table.Table, error)
}

func (t *Transformer) dimSteps() []dimStep {
	return []dimStep{
		{datasource.Customers, "dim_customers", t.dims.Customers},
		{datasource.Discounts, "dim_discounts", t.dims.Discounts},
		{datasource.Employees, "dim_employees", t.dims.Employees},
		{datasource.Products, "dim_products", t.dims.Products},
		{datasource.Stores, "dim_stores", t.dims.Stores},
	}
}

// TransformAll builds every table whose inputs are present in raw:
// a dimension per raw dimension input, dim_date always, and
// fact_transactions only when both transactions and exchange_rates exist.
//
// A builder that fails is logged and left out of the result; the others
// still run. The returned error joins every builder failure.
func (t *Transformer) TransformAll(raw map[string]*table.Table) (map[string]*table.Table, error) {
	out := make(map[string]*table.Table)
	var errs []error

	record := func(name string, tbl *table.Table, err error) {
		if err != nil {
			t.log.Error().Err(err).Str("table", name).Msg("transform failed; table skipped")
			errs = append(errs, err)
			return
		}
		t.log.Info().Str("table", name).Int("rows", tbl.Len()).Msg("table transformed")
		out[name] = tbl
	}

	for _, s := range t.dimSteps() {
		in, ok := raw[s.input]
		if !ok || in == nil {
			t.log.Debug().Str("input", s.input).Msg("input absent; dimension skipped")
			continue
		}
		tbl, err := s.build(in)
		record(s.output, tbl, err)
	}

	dates, err := t.dims.Date()
	record("dim_date", dates, err)

	tx, hasTx := raw[datasource.Transactions]
	rates, hasRates := raw[datasource.ExchangeRates]
	if hasTx && hasRates && tx != nil && rates != nil {
		facts, err := t.facts.Transactions(tx, rates)
		record(fact.TableName, facts, err)
	} else {
		t.log.Debug().Bool("transactions", hasTx).Bool("exchange_rates", hasRates).Msg("fact inputs incomplete; fact skipped")
	}

	if len(errs) > 0 {
		return out, fmt.Errorf("transform: %w", errors.Join(errs...))
	}
	return out, nil
}
