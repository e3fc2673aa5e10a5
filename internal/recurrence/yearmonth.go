package recurrence

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// YearMonth is a calendar month independent of any time zone.
type YearMonth struct {
	Year  int
	Month time.Month
}

func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// Of returns the month t falls in, read in t's own location.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (m YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Start is midnight UTC of the first day.
func (m YearMonth) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is midnight UTC of the last day.
func (m YearMonth) End() time.Time {
	return m.Day(31)
}

func (m YearMonth) Contains(t time.Time) bool {
	return Of(t) == m
}

// Add moves n months forward (or back for negative n).
func (m YearMonth) Add(n int) YearMonth {
	return Of(m.Start().AddDate(0, n, 0))
}

// Day returns day d of the month, clamped to the last day when the month is
// shorter: day 0 of the next month is the last day of this one.
func (m YearMonth) Day(d int) time.Time {
	last := time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if d > last {
		d = last
	}
	if d < 1 {
		d = 1
	}
	return time.Date(m.Year, m.Month, d, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the clock part of t, keeping its calendar date, as midnight UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
