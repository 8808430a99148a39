package holiday

import "time"

// dateLayout is the calendar date format used by the upstream API.
const dateLayout = "2006-01-02"

// Record is one holiday as returned by the upstream API for a given year.
type Record struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Metadata is the static descriptive text attached to a holiday.
type Metadata struct {
	Description string `json:"description"`
	Tip         string `json:"tip"`
	Movable     bool   `json:"movable"`
}

// Enriched pairs a record with its resolved metadata.
type Enriched struct {
	Record
	Metadata
}

// ID returns a stable identifier for the record within a result set.
func (r Record) ID() string {
	return r.Date + r.Name
}

// Time parses the record date. Full RFC 3339 timestamps are accepted as well.
func (r Record) Time() (time.Time, bool) {
	if t, err := time.Parse(dateLayout, r.Date); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Month returns the calendar month of the record date.
// ok is false when the date cannot be parsed.
func (r Record) Month() (m time.Month, ok bool) {
	t, ok := r.Time()
	if !ok {
		return 0, false
	}
	return t.Month(), true
}
