// Package transformer defines the table-to-table transform contract used by
// the dimension and fact builders, plus a Chain that applies transforms in
// order.
package transformer

import "salesdw/internal/table"

// Transformer maps one table to another. Implementations must not mutate
// their input.
type Transformer interface {
	Apply(*table.Table) (*table.Table, error)
}

// Func adapts a plain function to Transformer.
type Func func(*table.Table) (*table.Table, error)

// Apply calls f.
func (f Func) Apply(t *table.Table) (*table.Table, error) { return f(t) }

// Chain is an ordered list of transformers. The first error stops the chain.
type Chain []Transformer

// Apply runs every transformer in order.
func (c Chain) Apply(in *table.Table) (*table.Table, error) {
	out := in
	for _, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
