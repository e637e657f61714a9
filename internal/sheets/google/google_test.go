package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/config"
	ports "fintrack/internal/sheets"
)

// fakeSheets serves the handful of Sheets v4 endpoints the client uses.
type fakeSheets struct {
	mu        sync.Mutex
	columnA   [][]any
	appended  [][]any
	updated   [][]any
	deletes   []gsheet.DimensionRange
	metaCalls int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.appended = append(f.appended, vr.Values...)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"updates": map[string]any{"updatedRange": "Transactions!A2:G2"},
		})
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.DeleteDimension != nil && rq.DeleteDimension.Range != nil {
				f.deletes = append(f.deletes, *rq.DeleteDimension.Range)
			}
		}
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr gsheet.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.updated = append(f.updated, vr.Values...)
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		values := f.columnA
		if strings.HasSuffix(path, "A1:G1") && len(values) > 1 {
			values = values[:1]
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"values": values})
	case r.Method == http.MethodGet:
		f.metaCalls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": 7, "title": "Other"}},
				map[string]any{"properties": map[string]any{"sheetId": 42, "title": "Transactions"}},
			},
		})
	default:
		http.Error(w, "unexpected request "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, "sheet-1", "Transactions")
}

func TestClient_AppendTransaction(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	row := ports.Row{ID: "tx-1", OwnerID: "owner", Kind: "expense", Label: "Food", Amount: "12.50", Date: "2024-03-01"}
	ref, err := c.AppendTransaction(context.Background(), row)
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if ref != "Transactions!A2:G2" {
		t.Errorf("ref = %q", ref)
	}
	if len(fake.appended) != 1 || fake.appended[0][0] != "tx-1" || fake.appended[0][4] != "12.50" {
		t.Errorf("appended = %v", fake.appended)
	}

	if _, err := c.AppendTransaction(context.Background(), ports.Row{}); err == nil {
		t.Error("expected error for row without id")
	}
}

func TestClient_DeleteTransaction(t *testing.T) {
	fake := &fakeSheets{columnA: [][]any{{"id"}, {"tx-1"}, {"tx-2"}, {"tx-3"}}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	found, err := c.DeleteTransaction(ctx, "tx-2")
	if err != nil || !found {
		t.Fatalf("DeleteTransaction(tx-2) = %v, %v", found, err)
	}
	if len(fake.deletes) != 1 {
		t.Fatalf("deletes = %v", fake.deletes)
	}
	got := fake.deletes[0]
	if got.SheetId != 42 || got.Dimension != "ROWS" || got.StartIndex != 2 || got.EndIndex != 3 {
		t.Errorf("delete range = %+v", got)
	}

	found, err = c.DeleteTransaction(ctx, "tx-3")
	if err != nil || !found {
		t.Fatalf("DeleteTransaction(tx-3) = %v, %v", found, err)
	}
	if fake.metaCalls != 1 {
		t.Errorf("spreadsheet metadata fetched %d times, want 1", fake.metaCalls)
	}

	found, err = c.DeleteTransaction(ctx, "missing")
	if err != nil || found {
		t.Errorf("DeleteTransaction(missing) = %v, %v", found, err)
	}
	if len(fake.deletes) != 2 {
		t.Errorf("missing row should not issue a delete, got %d", len(fake.deletes))
	}
}

func TestClient_EnsureHeader(t *testing.T) {
	t.Run("empty sheet gets a header", func(t *testing.T) {
		fake := &fakeSheets{}
		c := newTestClient(t, fake)
		if err := c.EnsureHeader(context.Background()); err != nil {
			t.Fatalf("EnsureHeader() error = %v", err)
		}
		if len(fake.updated) != 1 || fake.updated[0][0] != "id" || len(fake.updated[0]) != len(ports.Header) {
			t.Errorf("updated = %v", fake.updated)
		}
	})

	t.Run("existing header is kept", func(t *testing.T) {
		fake := &fakeSheets{columnA: [][]any{{"id"}, {"tx-1"}}}
		c := newTestClient(t, fake)
		if err := c.EnsureHeader(context.Background()); err != nil {
			t.Fatalf("EnsureHeader() error = %v", err)
		}
		if len(fake.updated) != 0 {
			t.Errorf("header rewritten: %v", fake.updated)
		}
	})
}

func TestFindRow(t *testing.T) {
	values := [][]any{{"id"}, {}, {" tx-1 "}, {float64(12)}}
	tests := []struct {
		id   string
		want int
	}{
		{"id", 0},
		{"tx-1", 2},
		{"12", 3},
		{"nope", -1},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.id); got != tt.want {
			t.Errorf("findRow(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	ctx := context.Background()

	if _, err := New(ctx, Config{}); err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("New() without id error = %v", err)
	}
	if _, err := New(ctx, Config{SpreadsheetID: "x"}); err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("New() without credentials error = %v", err)
	}
	missing := filepath.Join(t.TempDir(), "nope.json")
	if _, err := New(ctx, Config{SpreadsheetID: "x", CredentialsFile: missing}); err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("New() with missing file error = %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := loadCredentials(Config{CredentialsJSON: `{"inline":true}`, CredentialsFile: file})
	if err != nil || string(data) != `{"inline":true}` {
		t.Errorf("inline JSON should win: %s, %v", data, err)
	}
	data, err = loadCredentials(Config{CredentialsFile: file})
	if err != nil || !strings.Contains(string(data), "service_account") {
		t.Errorf("file credentials: %s, %v", data, err)
	}
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(&config.Config{
		GoogleSpreadsheetID:      " sheet ",
		GoogleSheetName:          "Transactions",
		GoogleServiceAccountFile: "/creds.json",
	})
	if cfg.SpreadsheetID != "sheet" || cfg.SheetName != "Transactions" || cfg.CredentialsFile != "/creds.json" {
		t.Errorf("ConfigFromApp() = %+v", cfg)
	}
}
