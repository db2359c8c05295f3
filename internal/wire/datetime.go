package wire

import (
	"fmt"
	"strconv"
	"time"
)

const compactLayout = "20060102150405"

// FormatCompactDateTime renders t (converted to UTC) in the RFC 3977
// compact wire form yyyyMMddHHmmss, e.g. "20240601123456".
func FormatCompactDateTime(t time.Time) string {
	return t.UTC().Format(compactLayout)
}

// ParseCompactDateTime parses the date/time pair accepted by NEWGROUPS and
// NEWNEWS: an 8-digit yyyyMMdd or a legacy 6-digit yyMMdd date, plus an
// HHmmss time. now supplies the reference year used to resolve the
// 6-digit form's century, per spec.md §4.8.
func ParseCompactDateTime(date, clock string, now time.Time) (time.Time, error) {
	if len(clock) != 6 {
		return time.Time{}, fmt.Errorf("wire: invalid time %q", clock)
	}
	hh, err := strconv.Atoi(clock[0:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("wire: invalid time %q: %w", clock, err)
	}
	mm, err := strconv.Atoi(clock[2:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("wire: invalid time %q: %w", clock, err)
	}
	ss, err := strconv.Atoi(clock[4:6])
	if err != nil {
		return time.Time{}, fmt.Errorf("wire: invalid time %q: %w", clock, err)
	}

	var year, month, day int
	switch len(date) {
	case 8:
		y, err := strconv.Atoi(date[0:4])
		if err != nil {
			return time.Time{}, fmt.Errorf("wire: invalid date %q: %w", date, err)
		}
		year = y
		month, err = strconv.Atoi(date[4:6])
		if err != nil {
			return time.Time{}, fmt.Errorf("wire: invalid date %q: %w", date, err)
		}
		day, err = strconv.Atoi(date[6:8])
		if err != nil {
			return time.Time{}, fmt.Errorf("wire: invalid date %q: %w", date, err)
		}
	case 6:
		yy, err := strconv.Atoi(date[0:2])
		if err != nil {
			return time.Time{}, fmt.Errorf("wire: invalid date %q: %w", date, err)
		}
		currentYY := now.UTC().Year() % 100
		century := (now.UTC().Year() / 100) * 100
		if yy > currentYY {
			century -= 100
		}
		year = century + yy
		month, err = strconv.Atoi(date[2:4])
		if err != nil {
			return time.Time{}, fmt.Errorf("wire: invalid date %q: %w", date, err)
		}
		day, err = strconv.Atoi(date[4:6])
		if err != nil {
			return time.Time{}, fmt.Errorf("wire: invalid date %q: %w", date, err)
		}
	default:
		return time.Time{}, fmt.Errorf("wire: invalid date %q", date)
	}

	return time.Date(year, time.Month(month), day, hh, mm, ss, 0, time.UTC), nil
}
