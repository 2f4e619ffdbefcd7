package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName   = "Отчёты"
	columnWidth = 35.0
)

type XLSXRenderer struct{}

func (XLSXRenderer) Render(t Table, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", "B", columnWidth); err != nil {
		return err
	}

	black := "000000"
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "Times New Roman", Size: 14, Color: black},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: []excelize.Border{
			{Type: "left", Color: black, Style: 2},
			{Type: "right", Color: black, Style: 2},
			{Type: "top", Color: black, Style: 2},
			{Type: "bottom", Color: black, Style: 2},
		},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFFFF"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, row := range t.Rows {
		r := i + 1
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", r), row[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, fmt.Sprintf("B%d", r), row[1]); err != nil {
			return err
		}
		if err := f.SetRowHeight(sheetName, r, min(t.Heights[i], excelize.MaxRowHeight)); err != nil {
			return err
		}
	}
	if t.Len() > 0 {
		if err := f.SetCellStyle(sheetName, "A1", fmt.Sprintf("B%d", t.Len()), style); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
