package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// rocEpoch converts Minguo (ROC) calendar years, as used by TWSE exports.
const rocEpoch = 1911

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006.01.02",
	"20060102",
	time.RFC3339,
}

// ParseDate parses a calendar date from the input table and returns it at
// 00:00 UTC. Time-of-day and zone information is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDay(t.Year(), t.Month(), t.Day()), nil
		}
	}
	if t, ok := parseROC(s); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseROC handles "113/01/02" style dates.
func parseROC(s string) (time.Time, bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || len(parts[0]) > 3 {
		return time.Time{}, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || y <= 0 {
		return time.Time{}, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := calendarDay(y+rocEpoch, time.Month(m), d)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func calendarDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
