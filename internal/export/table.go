// Package export builds report tables and renders them into downloadable files.
package export

import (
	"strings"

	"github.com/Spok95/absence-bot/internal/datetime"
	"github.com/Spok95/absence-bot/internal/domain/reports"
)

// RowHeight is the height of a single text line, in points.
const RowHeight = 25.0

// HeaderRows is the number of rows before the first report row.
const HeaderRows = 3

type Format string

const (
	XLSX Format = "Xlsx"
	PDF  Format = "Pdf"
)

// Labels returns the formats in keyboard order.
func Labels() []string {
	return []string{string(XLSX), string(PDF)}
}

// ParseFormat accepts the exact, already case-normalized labels.
func ParseFormat(label string) (Format, bool) {
	switch Format(label) {
	case XLSX, PDF:
		return Format(label), true
	}
	return "", false
}

func (f Format) Ext() string {
	return "." + strings.ToLower(string(f))
}

// Table is what a Renderer receives: two columns, one height per row.
type Table struct {
	Rows    [][2]string
	Heights []float64
}

func (t Table) Len() int { return len(t.Rows) }

func (t *Table) add(a, b string, height float64) {
	t.Rows = append(t.Rows, [2]string{a, b})
	t.Heights = append(t.Heights, height)
}

// BuildTable lays out the header and one row per report; reps must already
// be ordered by date.
func BuildTable(creator, group string, reps []reports.Report) Table {
	var t Table
	t.add("Имя создателя группы", "Название группы", RowHeight)
	t.add(creator, group, RowHeight)
	t.add("Дата создания отчёта", "Участники отчёта", RowHeight)
	for _, rp := range reps {
		lines := len(rp.Members)
		if lines == 0 {
			lines = 1
		}
		t.add(datetime.Format(rp.Date), strings.Join(rp.Members, "\n"), float64(lines)*RowHeight)
	}
	return t
}
