// Package importer reads bulk-upload files into unvalidated candidates.
// Validation is left to the transaction service so uploads and JSON
// bulk-adds report errors identically.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingHeader     = errors.New("missing header row")
)

// Formats lists the accepted file extensions.
var Formats = []string{".json", ".csv", ".xlsx"}

// Parse decodes the file according to its extension.
func Parse(filename string, r io.Reader) ([]core.Candidate, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return ParseJSON(r)
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
}

// ParseJSON accepts an array of records, an object wrapping the array under
// "expenses", "incomes" or "records", or a single record.
func ParseJSON(r io.Reader) ([]core.Candidate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '[' {
		var list []core.Candidate
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode json array: %w", err)
		}
		return list, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("decode json object: %w", err)
	}
	for _, key := range []string{"expenses", "incomes", "records"} {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		var list []core.Candidate
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		return list, nil
	}

	var single core.Candidate
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("decode json record: %w", err)
	}
	return []core.Candidate{single}, nil
}

// ParseCSV reads a comma-separated file whose first row is the header.
func ParseCSV(r io.Reader) ([]core.Candidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows, nil)
}

// ParseXLSX reads the first sheet of a workbook whose first row is the header.
// Cells are read unformatted, so date cells arrive as serial numbers and are
// converted to YYYY-MM-DD.
func ParseXLSX(r io.Reader) ([]core.Candidate, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	return fromRows(rows, func(v string) string { return serialDate(v, date1904) })
}

// serialDate converts an Excel serial date to YYYY-MM-DD. Anything else is
// returned unchanged for the service to validate.
func serialDate(v string, date1904 bool) string {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		return v
	}
	t, err := excelize.ExcelDateToTime(n, date1904)
	if err != nil {
		return v
	}
	return core.DateOf(t).String()
}

type column int

const (
	colLabel column = iota
	colAmount
	colDate
	colIcon
)

var headerAliases = map[string]column{
	"category":     colLabel,
	"source":       colLabel,
	"incomesource": colLabel,
	"amount":       colAmount,
	"date":         colDate,
	"icon":         colIcon,
	"emoji":        colIcon,
}

// normalizeHeader lowercases and drops spaces and underscores, so
// "Income Source" and "income_source" both match.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "").Replace(s)
}

// fromRows maps the header row onto candidate fields. date, when set,
// rewrites date cells before they are stored.
func fromRows(rows [][]string, date func(string) string) ([]core.Candidate, error) {
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	index := map[column]int{}
	for i, h := range rows[0] {
		if col, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	if len(index) == 0 {
		return nil, ErrMissingHeader
	}

	cell := func(row []string, col column) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]core.Candidate, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		c := core.Candidate{
			Label:  cell(row, colLabel),
			Amount: cell(row, colAmount),
			Date:   cell(row, colDate),
			Icon:   cell(row, colIcon),
		}
		if date != nil && c.Date != "" {
			c.Date = date(c.Date)
		}
		out = append(out, c)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
