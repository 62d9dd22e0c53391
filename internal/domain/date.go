package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire and display layout for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD value. Blank input yields nil so callers can clear a date.
func ParseDate(raw string) (*Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, ErrInvalidDate
	}
	d := DateOf(ts)
	return &d, nil
}

// DateOf returns the calendar date of ts in its own location.
func DateOf(ts time.Time) Date {
	y, m, d := ts.Date()
	return Date{Year: y, Month: m, Day: d}
}

// String renders the date using DateLayout.
func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(DateLayout)
}

// FormatDate renders an optional date, returning "" for nil.
func FormatDate(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}
