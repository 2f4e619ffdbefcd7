package datetime

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

type Period int

const (
	Week Period = iota + 1
	Month
	Year
)

// Подписи периодов на кнопках
var periodLabels = map[string]Period{
	"Неделя": Week,
	"Месяц":  Month,
	"Год":    Year,
}

// PeriodLabels returns the keyboard labels in display order.
func PeriodLabels() []string {
	return []string{"Неделя", "Месяц", "Год"}
}

func ParsePeriod(label string) (Period, bool) {
	p, ok := periodLabels[label]
	return p, ok
}

// Resolve returns the inclusive [from, to] range of a period, where to is
// today local to offset.
func Resolve(p Period, now time.Time, offset int) (time.Time, time.Time) {
	to := LocalDate(now, offset)
	switch p {
	case Week:
		return StartOfWeek(now, offset), to
	case Month:
		return StartOfMonth(now, offset), to
	default:
		return StartOfYear(now, offset), to
	}
}

const maxOffset = 86400

var (
	ErrOffsetFormat = errors.New("datetime: malformed utc offset")
	ErrOffsetRange  = errors.New("datetime: utc offset out of range")
)

// ParseUTCOffset accepts either whole seconds ("10800", "-3600") or a
// signed ±HH:MM literal ("+03:00") and returns the offset in seconds.
func ParseUTCOffset(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrOffsetFormat
	}
	if !strings.Contains(text, ":") {
		v, err := strconv.Atoi(text)
		if err != nil {
			return 0, ErrOffsetFormat
		}
		if v <= -maxOffset || v >= maxOffset {
			return 0, ErrOffsetRange
		}
		return v, nil
	}

	sign := text[0]
	if sign != '+' && sign != '-' {
		return 0, ErrOffsetFormat
	}
	hh, mm, ok := strings.Cut(text[1:], ":")
	if !ok || hh == "" || mm == "" {
		return 0, ErrOffsetFormat
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || strings.ContainsAny(hh, "+-") {
		return 0, ErrOffsetFormat
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || strings.ContainsAny(mm, "+-") {
		return 0, ErrOffsetFormat
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, ErrOffsetRange
	}
	v := hours*3600 + minutes*60
	if sign == '-' {
		v = -v
	}
	return v, nil
}
