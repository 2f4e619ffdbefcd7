package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLocalDateAppliesOffset(t *testing.T) {
	now := time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)

	assert.Equal(t, date(2024, 3, 2), LocalDate(now, 10800))
	assert.Equal(t, date(2024, 3, 1), LocalDate(now, 0))
	assert.Equal(t, date(2024, 3, 1), LocalDate(now, -36000))
}

func TestPeriodStarts(t *testing.T) {
	// 2024-03-06 is a Wednesday.
	now := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, date(2024, 3, 4), StartOfWeek(now, 0))
	assert.Equal(t, date(2024, 3, 1), StartOfMonth(now, 0))
	assert.Equal(t, date(2024, 1, 1), StartOfYear(now, 0))

	sunday := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, date(2024, 3, 4), StartOfWeek(sunday, 0))
	monday := time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, date(2024, 3, 11), StartOfWeek(monday, 0))
}

func TestResolve(t *testing.T) {
	now := time.Date(2024, 3, 6, 23, 0, 0, 0, time.UTC)

	from, to := Resolve(Week, now, 10800)
	assert.Equal(t, date(2024, 3, 4), from)
	assert.Equal(t, date(2024, 3, 7), to)

	from, _ = Resolve(Month, now, 0)
	assert.Equal(t, date(2024, 3, 1), from)

	from, _ = Resolve(Year, now, 0)
	assert.Equal(t, date(2024, 1, 1), from)
}

func TestParsePeriod(t *testing.T) {
	p, ok := ParsePeriod("Месяц")
	require.True(t, ok)
	assert.Equal(t, Month, p)

	_, ok = ParsePeriod("Квартал")
	assert.False(t, ok)
	assert.Len(t, PeriodLabels(), 3)
}

func TestValidateDateString(t *testing.T) {
	cases := map[string]bool{
		"01.03.2024": true,
		"29.02.2024": true,
		"31.12.2999": true,
		"29.02.2023": false,
		"31.02.2024": false,
		"31.04.2024": false,
		"00.01.2024": false,
		"01.13.2024": false,
		"01.01.1999": false,
		"01.01.3000": false,
		"1.03.2024":  false,
		"01-03-2024": false,
		"":           false,
	}
	for in, want := range cases {
		assert.Equal(t, want, ValidateDateString(in), in)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for d := date(2000, 1, 1); d.Year() < 3000; d = d.AddDate(0, 1, 17) {
		got, err := Parse(Format(d))
		require.NoError(t, err)
		assert.True(t, d.Equal(got), Format(d))
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("2024.03.01")
	assert.ErrorIs(t, err, ErrFormat)
	_, err = Parse("31.02.2024")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestParseUTCOffset(t *testing.T) {
	ok := map[string]int{
		"10800":  10800,
		"-3600":  -3600,
		"0":      0,
		"+03:00": 10800,
		"-05:30": -19800,
		"+23:59": 86340,
		" 7200 ": 7200,
	}
	for in, want := range ok {
		got, err := ParseUTCOffset(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseUTCOffset("86400")
	assert.ErrorIs(t, err, ErrOffsetRange)
	_, err = ParseUTCOffset("+24:00")
	assert.ErrorIs(t, err, ErrOffsetRange)
	_, err = ParseUTCOffset("03:00")
	assert.ErrorIs(t, err, ErrOffsetFormat)
	_, err = ParseUTCOffset("abc")
	assert.ErrorIs(t, err, ErrOffsetFormat)
	_, err = ParseUTCOffset("+-1:00")
	assert.ErrorIs(t, err, ErrOffsetFormat)
}
