package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const pdfTitle = "Weather Requests Export"

func renderPDF(rows []FlatRow, opts Options) ([]byte, error) {
	pdf := buildPDF(rows, opts)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildPDF(rows []FlatRow, opts Options) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(pdfTitle, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	// Core fonts are cp1252; characters outside it are dropped.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, pdfTitle, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 6, "No requests.", "", 1, "L", false, 0, "")
	}

	for i, row := range rows {
		lines := entryLines(i, row, opts, "-")
		// Keep a block together when it would straddle a page break.
		_, pageHeight := pdf.GetPageSize()
		_, _, _, bottom := pdf.GetMargins()
		if pdf.GetY()+float64(len(lines))*6+4 > pageHeight-bottom {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 7, tr(lines[0]), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range lines[1:] {
			pdf.SetX(pdf.GetX() + 5)
			pdf.MultiCell(0, 5.5, tr(line), "", "L", false)
		}
		pdf.Ln(3)
	}

	return pdf
}
