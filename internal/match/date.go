package match

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date taken from a DD.MM.YYYY string.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses the API's DD.MM.YYYY format.
// It reports false for empty strings, a token count other than three,
// non-numeric tokens, a month outside 1-12 or a day outside 1-31.
func ParseDate(s string) (Date, bool) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Date{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, false
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1 {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// MonthKey returns the zero-padded YYYY-MM key of the date.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
}

// ISO returns the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseClock parses an HH:MM kickoff time.
func ParseClock(s string) (hour, minute int, ok bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// SortKey returns YYYYMMDDHHMM as a number. An unparseable date or time
// contributes zero, so undated records sort first and timeless ones at midnight.
func (r Record) SortKey() int64 {
	var key int64
	if d, ok := ParseDate(r.Date); ok {
		key = int64(d.Year)*1e8 + int64(d.Month)*1e6 + int64(d.Day)*1e4
	}
	if h, m, ok := ParseClock(r.Time); ok {
		key += int64(h)*100 + int64(m)
	}
	return key
}

// Kickoff returns the kickoff instant in loc. It reports false unless both date
// and time parse and the date exists in the calendar (no 31.02.).
func (r Record) Kickoff(loc *time.Location) (time.Time, bool) {
	d, ok := ParseDate(r.Date)
	if !ok {
		return time.Time{}, false
	}
	h, m, ok := ParseClock(r.Time)
	if !ok {
		return time.Time{}, false
	}

	t := time.Date(d.Year, time.Month(d.Month), d.Day, h, m, 0, 0, loc)
	if t.Day() != d.Day || int(t.Month()) != d.Month {
		return time.Time{}, false
	}
	return t, true
}

// SortByKickoff orders records by SortKey ascending. Equal keys keep their order.
func SortByKickoff(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SortKey() < records[j].SortKey()
	})
}
