// Package export renders transactions as downloadable documents. Every
// document is built in memory; nothing is written to disk.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// ExcelFilename is the attachment name for an Excel export.
func ExcelFilename(kind core.Kind) string {
	return string(kind) + "_details.xlsx"
}

// Excel writes one row per transaction under a Category|Source, Amount,
// Date header, newest first.
func Excel(kind core.Kind, txs []core.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := kind.Title()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return nil, fmt.Errorf("amount style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetColWidth(1, 1, 30); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}
	if err := sw.SetColWidth(2, 3, 14); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	header := []any{
		excelize.Cell{StyleID: headerStyle, Value: kind.LabelTitle()},
		excelize.Cell{StyleID: headerStyle, Value: "Amount"},
		excelize.Cell{StyleID: headerStyle, Value: "Date"},
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, t := range newestFirst(txs) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			t.Label,
			excelize.Cell{StyleID: amountStyle, Value: t.Amount.Decimal().InexactFloat64()},
			t.Date.String(),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// newestFirst returns a date-descending copy; equal dates keep input order.
func newestFirst(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
