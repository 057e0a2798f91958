package model

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date stored as a YYYY-MM-DD string.
//
// Dates are kept as strings rather than time.Time so that malformed
// values survive loading and are only rejected at the point of date
// arithmetic; schedule recomputation degrades instead of failing the
// whole structural operation.
type Date string

func (d Date) String() string { return string(d) }

func (d Date) Parse() (time.Time, error) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func (d Date) Valid() bool {
	_, err := d.Parse()
	return err == nil
}

// DateOf truncates a time to its UTC calendar date.
func DateOf(t time.Time) Date {
	return Date(t.UTC().Format(dateLayout))
}

func (d Date) AddDays(n int) (Date, error) {
	t, err := d.Parse()
	if err != nil {
		return "", err
	}
	return DateOf(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns b-a in whole days. Both dates are UTC midnights,
// so the division is exact.
func DaysBetween(a, b Date) (int, error) {
	ta, err := a.Parse()
	if err != nil {
		return 0, err
	}
	tb, err := b.Parse()
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

func DatePtr(d Date) *Date { return &d }
