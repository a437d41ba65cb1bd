// Package builtin contains the reusable table transforms the dimension and
// fact builders are composed from.
//
// DeDup is the optional distinct-by-key step for dimensions. It collapses
// rows that share a natural key and picks a winner according to a policy:
//
//   - "keep-first"   : keep the earliest occurrence
//   - "keep-last"    : keep the latest occurrence (default)
//   - "most-complete": keep the row with the most non-empty cells;
//     ties break by "keep-last"
//
// Winners are emitted in the order of their original position. Rows whose
// key is null are passed through after the winners; the builders drop them
// before dedup runs, so in practice none remain.
package builtin

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"salesdw/internal/table"
)

// Policy names accepted by DeDup.
const (
	PolicyNone         = "none"
	PolicyKeepFirst    = "keep-first"
	PolicyKeepLast     = "keep-last"
	PolicyMostComplete = "most-complete"
)

// DeDup implements a configurable, in-memory de-duplication policy.
type DeDup struct {
	// Keys are the columns that form the business key.
	Keys []string

	// Policy selects the winner among duplicates. Empty means keep-last.
	Policy string
}

// Apply implements transformer.Transformer.
func (d DeDup) Apply(in *table.Table) (*table.Table, error) {
	return d.apply(in, xxh3.HashString)
}

// apply buckets rows by hash(key) and compares the full key within a bucket,
// so a hash collision never merges distinct keys.
func (d DeDup) apply(in *table.Table, hash func(string) uint64) (*table.Table, error) {
	if in == nil || in.Len() == 0 || len(d.Keys) == 0 {
		return in, nil
	}

	idx := make([]int, len(d.Keys))
	for k, name := range d.Keys {
		if idx[k] = in.Index(name); idx[k] < 0 {
			return nil, fmt.Errorf("dedup key %q: %w", name, table.ErrMissingColumn)
		}
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	switch policy {
	case PolicyNone:
		return in, nil
	case "":
		policy = PolicyKeepLast
	}

	type slot struct {
		key   string
		index int
		score int
	}
	buckets := make(map[uint64][]slot, in.Len())
	var (
		passthrough []int
		nwinners    int
	)

	for i, r := range in.Rows {
		key, ok := encodeKey(r, idx)
		if !ok {
			passthrough = append(passthrough, i)
			continue
		}
		h := hash(key)
		bucket := buckets[h]
		pos := -1
		for b := range bucket {
			if bucket[b].key == key {
				pos = b
				break
			}
		}
		if pos < 0 {
			buckets[h] = append(bucket, slot{key: key, index: i, score: completeness(r)})
			nwinners++
			continue
		}
		switch policy {
		case PolicyKeepFirst:
		case PolicyMostComplete:
			if s := completeness(r); s >= bucket[pos].score {
				bucket[pos].index, bucket[pos].score = i, s
			}
		default:
			bucket[pos].index = i
		}
	}

	keep := make([]int, 0, nwinners+len(passthrough))
	for _, bucket := range buckets {
		for _, s := range bucket {
			keep = append(keep, s.index)
		}
	}
	sort.Ints(keep)
	keep = append(keep, passthrough...)

	out := &table.Table{
		Columns: append([]string(nil), in.Columns...),
		Rows:    make([][]any, 0, len(keep)),
	}
	for _, i := range keep {
		out.Rows = append(out.Rows, append([]any(nil), in.Rows[i]...))
	}
	return out, nil
}

// encodeKey renders the key cells of r unambiguously: each cell carries its
// type and length, so int64(1) and "1" differ. It reports false when any key
// cell is null.
func encodeKey(r []any, idx []int) (string, bool) {
	var b strings.Builder
	for _, j := range idx {
		var s string
		switch v := r[j].(type) {
		case nil:
			return "", false
		case string:
			s = v
		case time.Time:
			s = v.UTC().Format(time.RFC3339Nano)
		default:
			s = fmt.Sprint(v)
		}
		fmt.Fprintf(&b, "%T:%d:%s;", r[j], len(s), s)
	}
	return b.String(), true
}

// completeness counts the non-null, non-empty cells of r.
func completeness(r []any) int {
	n := 0
	for _, v := range r {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		n++
	}
	return n
}
