// Package workdays counts teaching days between calendar dates.
package workdays

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Count returns the number of Monday-to-Friday days in [start, end], inclusive.
// It returns 0 when end precedes start. Only the calendar date of each bound is used.
func Count(start, end time.Time) int {
	s := truncate(start)
	e := truncate(end)
	if e.Before(s) {
		return 0
	}

	days := int(e.Sub(s).Hours()/24) + 1
	weeks := days / 7
	count := weeks * 5

	d := s.AddDate(0, 0, weeks*7)
	for i := 0; i < days%7; i++ {
		if IsWeekday(d) {
			count++
		}
		d = d.AddDate(0, 0, 1)
	}
	return count
}

// IsWeekday reports whether t falls on Monday to Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Parse reads a YYYY-MM-DD date in UTC.
func Parse(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
