// Package datetime resolves calendar dates local to a user's UTC offset
// and parses the date literals users type into the bot.
package datetime

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// Layout is the DD.MM.YYYY wire format of a date.
const Layout = "02.01.2006"

const (
	MinYear = 2000
	MaxYear = 2999
)

var ErrFormat = errors.New("datetime: date does not match DD.MM.YYYY")

var dateRe = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)

// LocalDate returns the calendar date of now shifted by offset seconds,
// as midnight UTC of that date.
func LocalDate(now time.Time, offset int) time.Time {
	t := now.UTC().Add(time.Duration(offset) * time.Second)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Monday of the local week.
func StartOfWeek(now time.Time, offset int) time.Time {
	d := LocalDate(now, offset)
	back := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -back)
}

func StartOfMonth(now time.Time, offset int) time.Time {
	d := LocalDate(now, offset)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func StartOfYear(now time.Time, offset int) time.Time {
	d := LocalDate(now, offset)
	return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// ValidateDateString reports whether text is a DD.MM.YYYY date with the year
// in [2000, 2999] that exists in the calendar ("31.02.2024" is rejected).
func ValidateDateString(text string) bool {
	m := dateRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if day < 1 || day > 31 || month < 1 || month > 12 || year < MinYear || year > MaxYear {
		return false
	}
	_, err := time.Parse(Layout, text)
	return err == nil
}

// Parse strictly parses a DD.MM.YYYY literal.
func Parse(text string) (time.Time, error) {
	if !dateRe.MatchString(text) {
		return time.Time{}, ErrFormat
	}
	t, err := time.Parse(Layout, text)
	if err != nil {
		return time.Time{}, ErrFormat
	}
	return t, nil
}

func Format(d time.Time) string {
	return d.Format(Layout)
}
