package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

func TestParseJSONShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		count int
		label string
	}{
		{"array", `[{"category":"Food","amount":12.5,"date":"2024-03-01"},{"category":"Rent","amount":"800","date":"2024-03-02"}]`, 2, "Food"},
		{"expenses wrapper", `{"expenses":[{"category":"Food","amount":1,"date":"2024-03-01"}]}`, 1, "Food"},
		{"incomes wrapper", `{"incomes":[{"source":"Salary","amount":1,"date":"2024-03-01"}]}`, 1, "Salary"},
		{"single record", `{"source":"Gift","amount":5,"date":"2024-03-01"}`, 1, "Gift"},
		{"empty file", ``, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse("upload.JSON", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(got) != tt.count {
				t.Fatalf("count = %d, want %d", len(got), tt.count)
			}
			if tt.count > 0 && got[0].Label != tt.label {
				t.Fatalf("label = %q, want %q", got[0].Label, tt.label)
			}
		})
	}
}

func TestParseCSVHeaderAliases(t *testing.T) {
	body := "Income Source,Amount,Date,Emoji\n" +
		"Salary,3000,2024-03-01,💰\n" +
		",,,\n" +
		"Freelance, 450.50 ,2024-03-02\n"
	got, err := Parse("incomes.csv", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("blank rows should be skipped, got %d rows", len(got))
	}
	if got[0].Label != "Salary" || got[0].Amount != "3000" || got[0].Icon != "💰" {
		t.Fatalf("unexpected first row %+v", got[0])
	}
	if got[1].Amount != "450.50" || got[1].Icon != "" {
		t.Fatalf("short rows should leave missing cells empty: %+v", got[1])
	}
}

func TestParseCSVWithoutKnownHeader(t *testing.T) {
	_, err := Parse("x.csv", strings.NewReader("foo,bar\n1,2\n"))
	if !errors.Is(err, ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader, got %v", err)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"category", "amount", "date"},
		{"Food", 12.5, "2024-03-01"},
		{"Rent", 800, "2024-03-02"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	got, err := Parse("expenses.xlsx", &buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 2 || got[0].Label != "Food" || got[0].Amount != "12.5" || got[1].Amount != "800" {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestParseXLSXDateCells(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := map[string]any{
		"A1": "category", "B1": "amount", "C1": "date",
		"A2": "Food", "B2": 12.5, "C2": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"A3": "Taxi", "B3": 7, "C3": time.Date(2024, 12, 31, 18, 45, 0, 0, time.UTC),
		"A4": "Rent", "B4": 800, "C4": "2024-03-02",
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("SetCellValue(%s): %v", cell, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	got, err := Parse("expenses.xlsx", &buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"2024-03-01", "2024-12-31", "2024-03-02"}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Date != w {
			t.Errorf("row %d date = %q, want %q", i, got[i].Date, w)
		}
		if _, err := core.ParseDate(got[i].Date); err != nil {
			t.Errorf("row %d date %q does not parse: %v", i, got[i].Date, err)
		}
	}
}

func TestSerialDate(t *testing.T) {
	cases := []struct {
		in       string
		date1904 bool
		want     string
	}{
		{"45352", false, "2024-03-01"},
		{"45352.75", false, "2024-03-01"},
		{"43890", true, "2024-03-01"},
		{"2024-03-01", false, "2024-03-01"},
		{"01/03/2024", false, "01/03/2024"},
		{"-3", false, "-3"},
	}
	for _, tc := range cases {
		if got := serialDate(tc.in, tc.date1904); got != tc.want {
			t.Errorf("serialDate(%q, %v) = %q, want %q", tc.in, tc.date1904, got, tc.want)
		}
	}
}

func TestParseUnsupported(t *testing.T) {
	if _, err := Parse("notes.txt", strings.NewReader("")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
