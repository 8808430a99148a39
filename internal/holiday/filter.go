package holiday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthFilter selects either every month or a single calendar month.
// The zero value is AllMonths.
type MonthFilter int

// AllMonths keeps every record.
const AllMonths MonthFilter = 0

// ForMonth returns the filter for a single calendar month.
func ForMonth(m time.Month) MonthFilter {
	return MonthFilter(m)
}

// All reports whether the filter keeps every record.
func (f MonthFilter) All() bool {
	return f == AllMonths
}

// Month returns the selected month; it is 0 for AllMonths.
func (f MonthFilter) Month() time.Month {
	return time.Month(f)
}

// String returns "all" or the month number, the same form ParseMonthFilter accepts.
func (f MonthFilter) String() string {
	if f.All() {
		return "all"
	}
	return strconv.Itoa(int(f))
}

// ParseMonthFilter parses "all", "todos", "" or a month number 1..12.
func ParseMonthFilter(s string) (MonthFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all", "todos":
		return AllMonths, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return AllMonths, fmt.Errorf("invalid month %q", s)
	}
	return MonthFilter(n), nil
}

// Filter returns the records whose calendar month matches f, in input order.
// Records with unparseable dates are dropped unless f is AllMonths.
func Filter(records []Record, f MonthFilter) []Record {
	if f.All() {
		return records
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		m, ok := r.Month()
		if !ok || m != f.Month() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CountUnparseable returns how many records carry a date that cannot be parsed.
func CountUnparseable(records []Record) int {
	n := 0
	for _, r := range records {
		if _, ok := r.Time(); !ok {
			n++
		}
	}
	return n
}
