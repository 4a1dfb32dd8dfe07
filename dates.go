package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// isoLayout is the pub_date storage format.
const isoLayout = "2006-01-02T15:04:05"

// parseLooseDate parses the free-form timestamps found in exported posts
// ("Jun 01, 2021 10:30:00 am", "2021-06-01 10:30:00", ...).
func parseLooseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// filenameDate returns the first underscore-separated token of the filename
// stem that is exactly eight digits and a valid YYYYMMDD date.
func filenameDate(name string) (time.Time, bool) {
	stem := strings.TrimSuffix(name, ".html")
	for _, tok := range strings.Split(stem, "_") {
		if len(tok) != 8 || !allDigits(tok) {
			continue
		}
		t, err := time.Parse("20060102", tok)
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}

var eightDigitsRe = regexp.MustCompile(`\d{8}`)

// anyDateToken finds an 8-digit YYYYMMDD run anywhere in name.
func anyDateToken(name string) (time.Time, bool) {
	for _, m := range eightDigitsRe.FindAllString(name, -1) {
		if t, err := time.Parse("20060102", m); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// yearMonthAttrs reads data-year/data-month (month 1..12) into the first of that month.
func yearMonthAttrs(year, month string) (time.Time, bool) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
