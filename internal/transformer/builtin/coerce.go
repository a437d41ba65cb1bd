package builtin

import (
	"math"
	"strconv"
	"strings"
	"time"

	"salesdw/internal/table"
)

// TimeLayouts are the layouts tried, in order, when a date or timestamp
// arrives as a string.
var TimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Coerce converts cells of the listed columns to a logical kind:
// "int", "float", "text", "bool", "date" or "timestamp".
//
// Values that cannot be converted are left unchanged; the warehouse rejects
// them later as a type mismatch for that table. Columns missing from the
// table are ignored.
type Coerce struct {
	Types map[string]string
}

// Apply implements transformer.Transformer.
func (c Coerce) Apply(in *table.Table) (*table.Table, error) {
	if len(c.Types) == 0 || in == nil {
		return in, nil
	}
	out := in.Clone()
	for field, kind := range c.Types {
		j := out.Index(field)
		if j < 0 {
			continue
		}
		for _, r := range out.Rows {
			if v, ok := CoerceValue(r[j], kind); ok {
				r[j] = v
			}
		}
	}
	return out, nil
}

// floatToInt converts an integral f that fits in int64. 2^63 itself is out
// of range; -2^63 is not.
func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// CoerceValue converts v to kind. It reports false when v cannot be
// represented, in which case the caller keeps the original value. nil is
// always accepted as nil.
func CoerceValue(v any, kind string) (any, bool) {
	if v == nil {
		return nil, true
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" && kind != "text" {
			return nil, true
		}
		v = s
	}

	switch strings.ToLower(kind) {
	case "int", "integer", "bigint":
		switch n := v.(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case int32:
			return int64(n), true
		case float64:
			if i, ok := floatToInt(n); ok {
				return i, true
			}
		case string:
			if i, err := strconv.ParseInt(n, 10, 64); err == nil {
				return i, true
			}
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				if i, ok := floatToInt(f); ok {
					return i, true
				}
			}
		}
	case "float", "double", "real":
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	case "bool", "boolean":
		switch b := v.(type) {
		case bool:
			return b, true
		case int64:
			return b != 0, true
		case string:
			if p, err := strconv.ParseBool(b); err == nil {
				return p, true
			}
		}
	case "date", "timestamp", "datetime":
		switch tv := v.(type) {
		case time.Time:
			if kind == "date" {
				return truncateDay(tv), true
			}
			return tv, true
		case string:
			if ts, ok := ParseTime(tv); ok {
				if kind == "date" {
					return truncateDay(ts), true
				}
				return ts, true
			}
		}
	case "text", "string":
		switch s := v.(type) {
		case string:
			return s, true
		case int64:
			return strconv.FormatInt(s, 10), true
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(s), true
		}
	}
	return v, false
}

// ParseTime parses s with the first matching layout in TimeLayouts.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range TimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
