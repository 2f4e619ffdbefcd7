// Package stats aggregates absence reports into a ranked per-member summary.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Spok95/absence-bot/internal/datetime"
	"github.com/Spok95/absence-bot/internal/domain/reports"
)

type Entry struct {
	Member  string
	Count   int
	Percent int
}

type Summary struct {
	Total   int
	Entries []Entry
}

// Aggregate counts in how many reports each member was listed. Entries are
// ranked by count, ties keep the order in which members were first seen.
func Aggregate(reps []reports.Report) Summary {
	s := Summary{Total: len(reps)}
	idx := make(map[string]int)
	for _, rp := range reps {
		for _, m := range rp.Members {
			if m == "" {
				continue
			}
			i, ok := idx[m]
			if !ok {
				i = len(s.Entries)
				idx[m] = i
				s.Entries = append(s.Entries, Entry{Member: m})
			}
			s.Entries[i].Count++
		}
	}
	sort.SliceStable(s.Entries, func(i, j int) bool {
		return s.Entries[i].Count > s.Entries[j].Count
	})
	for i := range s.Entries {
		s.Entries[i].Percent = s.Entries[i].Count * 100 / s.Total
	}
	return s
}

// Render formats the summary for the recipient.
func Render(group string, from, to time.Time, s Summary) string {
	period := fmt.Sprintf("С %s по %s", datetime.Format(from), datetime.Format(to))
	if s.Total == 0 {
		return fmt.Sprintf("%s в группе \"%s\" не создавалось отчётов об отсутствии.", period, group)
	}
	if len(s.Entries) == 0 {
		return fmt.Sprintf("%s в группе \"%s\" отсутствующих не было.", period, group)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Статистика отсутствия участников группы \"%s\" с %s по %s:\n",
		group, datetime.Format(from), datetime.Format(to))
	lines := make([]string, 0, len(s.Entries))
	for i, e := range s.Entries {
		lines = append(lines, fmt.Sprintf("%d. %s - Присутствовал в %d отчётах из %d (%d%%)",
			i+1, e.Member, e.Count, s.Total, e.Percent))
	}
	b.WriteString(strings.Join(lines, ";\n"))
	b.WriteString(".")
	return b.String()
}
