package export

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

// DejaVu Sans Condensed, used when no font file is configured.
//
//go:embed fonts/DejaVuSansCondensed.ttf
var defaultFont []byte

const (
	pdfFamily   = "TimesUTF8"
	pdfFontSize = 14.0
	// пункты в миллиметры
	ptToMM = 25.4 / 72
)

// PDFRenderer draws the table with a TrueType font loaded from FontPath,
// or with the embedded Cyrillic font when FontPath is empty.
type PDFRenderer struct {
	FontPath string
}

func (r PDFRenderer) font() ([]byte, error) {
	if r.FontPath == "" {
		return defaultFont, nil
	}
	b, err := os.ReadFile(r.FontPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf font: %w", err)
	}
	return b, nil
}

func (r PDFRenderer) Render(t Table, path string) error {
	font, err := r.font()
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddUTF8FontFromBytes(pdfFamily, "", font)
	// нечитаемый TTF fpdf пропускает молча, ошибка всплывает на SetFont
	pdf.SetFont(pdfFamily, "", pdfFontSize)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("load pdf font: %w", err)
	}
	pdf.SetLineWidth(0.3)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	left, top, right, bottom := pdf.GetMargins()
	colW := (pageW - left - right) / 2
	lineH := pdfFontSize * ptToMM * 1.2

	y := top
	for i, row := range t.Rows {
		h := t.Heights[i] * ptToMM
		if y+h > pageH-bottom && y > top {
			pdf.AddPage()
			y = top
		}
		for c, text := range row {
			x := left + float64(c)*colW
			pdf.Rect(x, y, colW, h, "D")
			lines := strings.Split(text, "\n")
			ty := y + (h-float64(len(lines))*lineH)/2
			for _, line := range lines {
				pdf.SetXY(x, ty)
				pdf.CellFormat(colW, lineH, line, "", 0, "CM", false, 0, "")
				ty += lineH
			}
		}
		y += h
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
