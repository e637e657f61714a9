package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/config"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

// Client mirrors transactions into a single sheet of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger

	mu      sync.Mutex
	sheetID *int64 // numeric id of sheetName, resolved on first delete
}

var _ ports.TransactionMirror = (*Client)(nil)

// Config selects the spreadsheet and the service account credentials.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// ConfigFromApp extracts the Sheets settings from the application config.
func ConfigFromApp(c *config.Config) Config {
	return Config{
		SpreadsheetID:   strings.TrimSpace(c.GoogleSpreadsheetID),
		SheetName:       strings.TrimSpace(c.GoogleSheetName),
		CredentialsJSON: strings.TrimSpace(c.GoogleServiceAccountJSON),
		CredentialsFile: strings.TrimSpace(c.GoogleServiceAccountFile),
	}
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if sheetName == "" {
		sheetName = "Transactions"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        log.Default(log.ComponentSheets),
	}
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case cfg.CredentialsJSON != "":
		return []byte(cfg.CredentialsJSON), nil
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// EnsureHeader writes the header row when the first row is empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:G1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", c.sheetName, err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{ports.Header}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", c.sheetName, err)
	}
	c.logger.InfoContext(ctx, "Wrote mirror header", "sheet", c.sheetName)
	return nil
}

// AppendTransaction implements ports.TransactionMirror.
func (c *Client) AppendTransaction(ctx context.Context, row ports.Row) (string, error) {
	if row.ID == "" {
		return "", errors.New("row without id")
	}

	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row.Values()}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	return ref, nil
}

// DeleteTransaction implements ports.TransactionMirror. The row is located
// by matching column A and removed with a DeleteDimension request.
func (c *Client) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read ids of %s: %w", c.sheetName, err)
	}

	idx := findRow(resp.Values, id)
	if idx < 0 {
		return false, nil
	}

	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return false, err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      int64(idx),
					EndIndex:        int64(idx + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("delete row %d of %s: %w", idx+1, c.sheetName, err)
	}
	return true, nil
}

func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sheetID != nil {
		return *c.sheetID, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			id := sh.Properties.SheetId
			c.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}

// findRow returns the 0-based index of the row whose first cell equals id.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i
		}
	}
	return -1
}
