package builtin

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"salesdw/internal/table"
)

// Normalize standardizes column names so downstream selectors are stable
// regardless of how the source spelled its header.
type Normalize struct{}

// Apply implements transformer.Transformer.
func (Normalize) Apply(in *table.Table) (*table.Table, error) {
	return NormalizeColumns(in), nil
}

// NormalizeColumns returns a table with the same rows and every column name
// normalized by NormalizeName. Names that collide after normalization get a
// numeric suffix (_2, _3, ...) in column order. Column order, row order and
// values are untouched; row data is shared with the input.
func NormalizeColumns(in *table.Table) *table.Table {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in.Columns))
	cols := make([]string, len(in.Columns))
	for i, c := range in.Columns {
		name := NormalizeName(c)
		if _, dup := seen[name]; dup {
			for n := 2; ; n++ {
				cand := name + "_" + strconv.Itoa(n)
				if _, taken := seen[cand]; !taken {
					name = cand
					break
				}
			}
		}
		seen[name] = struct{}{}
		cols[i] = name
	}
	return &table.Table{Columns: cols, Rows: in.Rows}
}

// NormalizeName lowercases s, folds accents, and replaces every space and
// hyphen with an underscore. Any other character outside [a-z0-9_] also
// becomes an underscore, so the result is always a plain SQL identifier.
func NormalizeName(s string) string {
	s = strings.ToLower(s)

	// Decompose, drop nonspacing marks, recompose.
	fold := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
