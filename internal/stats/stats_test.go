package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/absence-bot/internal/domain/reports"
)

var (
	from = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
)

func reps(lists ...[]string) []reports.Report {
	out := make([]reports.Report, 0, len(lists))
	for i, l := range lists {
		out = append(out, reports.Report{ID: int64(i + 1), Date: from.AddDate(0, 0, i), Members: l})
	}
	return out
}

func TestAggregateRanksByCount(t *testing.T) {
	s := Aggregate(reps([]string{"Ann"}, []string{"Ann", "Bob"}))

	require.Equal(t, 2, s.Total)
	require.Len(t, s.Entries, 2)
	assert.Equal(t, Entry{Member: "Ann", Count: 2, Percent: 100}, s.Entries[0])
	assert.Equal(t, Entry{Member: "Bob", Count: 1, Percent: 50}, s.Entries[1])
}

func TestAggregateTieKeepsFirstSeenOrder(t *testing.T) {
	s := Aggregate(reps([]string{"Zed", "Amy"}, []string{"Amy", "Zed"}, []string{}))

	require.Len(t, s.Entries, 2)
	assert.Equal(t, "Zed", s.Entries[0].Member)
	assert.Equal(t, "Amy", s.Entries[1].Member)
	assert.Equal(t, 66, s.Entries[0].Percent)
}

func TestPercentIsFlooredAndBounded(t *testing.T) {
	lists := [][]string{{"A"}, {"A"}, {}, {"B"}, {}, {}}
	s := Aggregate(reps(lists...))
	for _, e := range s.Entries {
		assert.GreaterOrEqual(t, e.Percent, 0)
		assert.LessOrEqual(t, e.Percent, 100)
		assert.Equal(t, e.Count*100/s.Total, e.Percent)
	}
	assert.Equal(t, 33, s.Entries[0].Percent)
	assert.Equal(t, 16, s.Entries[1].Percent)
}

func TestRender(t *testing.T) {
	got := Render("Team Alpha", from, to, Aggregate(reps([]string{"Ann"}, []string{"Ann", "Bob"})))

	want := "Статистика отсутствия участников группы \"Team Alpha\" с 01.03.2024 по 07.03.2024:\n" +
		"1. Ann - Присутствовал в 2 отчётах из 2 (100%);\n" +
		"2. Bob - Присутствовал в 1 отчётах из 2 (50%)."
	assert.Equal(t, want, got)
}

func TestRenderSpecialCases(t *testing.T) {
	assert.Equal(t,
		"С 01.03.2024 по 07.03.2024 в группе \"Team\" не создавалось отчётов об отсутствии.",
		Render("Team", from, to, Aggregate(nil)))
	assert.Equal(t,
		"С 01.03.2024 по 07.03.2024 в группе \"Team\" отсутствующих не было.",
		Render("Team", from, to, Aggregate(reps([]string{}, []string{}))))
}
