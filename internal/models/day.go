package models

import (
	"fmt"
	"time"
)

// DayLayout is the wire format of a calendar day.
const DayLayout = "2006-01-02"

// Day is a calendar date in the attendance timezone.
type Day string

// DayOf converts an instant to the calendar day it falls on in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc).Format(DayLayout))
}

// ParseDay validates a YYYY-MM-DD string.
func ParseDay(raw string) (Day, error) {
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return "", fmt.Errorf("invalid day %q, expected YYYY-MM-DD", raw)
	}
	return Day(t.Format(DayLayout)), nil
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// InMonth reports whether the day belongs to the given year and month.
func (d Day) InMonth(year int, month time.Month) bool {
	t := d.Time()
	if t.IsZero() {
		return false
	}
	return t.Year() == year && t.Month() == month
}

// Between reports whether from <= d <= to. Empty bounds are open.
func (d Day) Between(from, to Day) bool {
	if from != "" && d < from {
		return false
	}
	if to != "" && d > to {
		return false
	}
	return true
}

func (d Day) String() string {
	return string(d)
}
