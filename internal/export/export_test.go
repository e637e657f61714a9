package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{Kind: core.KindExpense, Label: "Food", Amount: core.Money{Cents: 1250}, Date: core.NewDate(2024, 3, 1)},
		{Kind: core.KindExpense, Label: "Rent", Amount: core.Money{Cents: 80000}, Date: core.NewDate(2024, 3, 5)},
		{Kind: core.KindExpense, Label: "Café", Amount: core.Money{Cents: 350}, Date: core.NewDate(2024, 3, 3)},
	}
}

func TestExcel(t *testing.T) {
	data, err := Excel(core.KindExpense, sample())
	if err != nil {
		t.Fatalf("Excel: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Expense" {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows("Expense")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Category" || rows[0][1] != "Amount" || rows[0][2] != "Date" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "Rent" || rows[1][2] != "2024-03-05" || rows[3][0] != "Food" {
		t.Fatalf("rows not sorted newest first: %v", rows)
	}
}

func TestExcelIncomeHeader(t *testing.T) {
	data, err := Excel(core.KindIncome, nil)
	if err != nil {
		t.Fatalf("Excel: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows("Income")
	if len(rows) != 1 || rows[0][0] != "Source" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestPDF(t *testing.T) {
	data, err := PDF(core.KindExpense, "11111111-1111-4111-8111-111111111111", sample(), time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestFilenames(t *testing.T) {
	if ExcelFilename(core.KindIncome) != "income_details.xlsx" || PDFFilename(core.KindExpense) != "expense_statement.pdf" {
		t.Fatal("unexpected filenames")
	}
}

func TestHelpers(t *testing.T) {
	if maskID("abcdefghijkl") != "abcd...ijkl" || maskID("short") != "short" {
		t.Fatal("maskID")
	}
	if trimTo("hello", 10) != "hello" || trimTo("hello world", 6) != "hello..." {
		t.Fatalf("trimTo = %q", trimTo("hello world", 6))
	}
}
