package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"fintrack/internal/core"
)

// maxPDFRows bounds the detail table; the totals always cover every row.
const maxPDFRows = 500

// PDFFilename is the attachment name for a PDF statement.
func PDFFilename(kind core.Kind) string {
	return string(kind) + "_statement.pdf"
}

// PDF renders an A4 statement: title, total, a per-label breakdown and the
// detail rows.
func PDF(kind core.Kind, owner string, txs []core.Transaction, now time.Time) ([]byte, error) {
	summary := core.Summarize(txs)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, kind.Title()+" Statement")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Generated: "+now.UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Owner: "+maskID(owner))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(91, 10, "Total", "1", 0, "C", true, 0, "")
	pdf.CellFormat(91, 10, "Entries", "1", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(91, 10, summary.Total.String(), "1", 0, "C", false, 0, "")
	pdf.CellFormat(91, 10, fmt.Sprintf("%d", summary.Count), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "By "+kind.LabelTitle())
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.CellFormat(122, 8, kind.LabelTitle(), "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 8, "Amount", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, lt := range summary.ByLabel {
		pdf.CellFormat(122, 8, tr(trimTo(lt.Name, 60)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, lt.Amount.String(), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	detailHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(30, 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(112, 8, kind.LabelTitle(), "1", 0, "L", true, 0, "")
		pdf.CellFormat(40, 8, "AMOUNT", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	detailHeader()
	for i, t := range newestFirst(txs) {
		if i >= maxPDFRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, fmt.Sprintf("%d more entries not shown", len(txs)-maxPDFRows), "1", 1, "C", false, 0, "")
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			detailHeader()
		}
		pdf.CellFormat(30, 8, t.Date.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(112, 8, tr(trimTo(t.Label, 60)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, t.Amount.String(), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func maskID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:4] + "..." + id[len(id)-4:]
}

func trimTo(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
