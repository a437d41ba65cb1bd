package dimension

import (
	"errors"
	"fmt"
	"time"

	"salesdw/internal/table"
)

var (
	// ErrInvalidRange is returned when the date range ends before it starts.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInvalidFiscalMonth is returned for a fiscal start month outside 1..12.
	ErrInvalidFiscalMonth = errors.New("fiscal start month must be 1..12")
)

// DateKeyLayout renders a date as its zero-padded DDMMYYYY key.
const DateKeyLayout = "02012006"

// DateKey returns the dim_date key for t.
func DateKey(t time.Time) string { return t.Format(DateKeyLayout) }

// FiscalQuarter maps a calendar month to the 1-4 quarter of a fiscal year
// starting in startMonth.
func FiscalQuarter(month, startMonth int) int {
	return ((month-startMonth+12)%12)/3 + 1
}

var dateColumns = []string{
	"date_key", "date", "year", "quarter", "month", "month_name", "day",
	"day_of_week", "day_name", "week_of_year", "is_weekend", "fiscal_quarter",
}

// Date generates dim_date: one row per day of the configured inclusive
// range, sorted by date_key.
//
// day_of_week is ISO numbered (1=Monday .. 7=Sunday) and week_of_year is
// the ISO week.
func (b *Builder) Date() (*table.Table, error) {
	start, end, err := b.cfg.DateRange()
	if err != nil {
		return nil, fmt.Errorf("dim_date: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("dim_date: %s..%s: %w", b.cfg.DateStart, b.cfg.DateEnd, ErrInvalidRange)
	}
	fiscal := b.cfg.FiscalStartMonth
	if fiscal < 1 || fiscal > 12 {
		return nil, fmt.Errorf("dim_date: %d: %w", fiscal, ErrInvalidFiscalMonth)
	}

	out := table.New(dateColumns)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out.Rows = append(out.Rows, dateRow(d, fiscal))
	}
	return out.SortBy("date_key")
}

func dateRow(d time.Time, fiscalStart int) []any {
	dow := int(d.Weekday())
	if dow == 0 {
		dow = 7
	}
	_, week := d.ISOWeek()
	month := int(d.Month())
	return []any{
		DateKey(d),
		d,
		int64(d.Year()),
		int64((month-1)/3 + 1),
		int64(month),
		d.Month().String(),
		int64(d.Day()),
		int64(dow),
		d.Weekday().String(),
		int64(week),
		dow >= 6,
		int64(FiscalQuarter(month, fiscalStart)),
	}
}
