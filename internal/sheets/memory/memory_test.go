package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/sheets"
)

func TestMirror_AppendAndDelete(t *testing.T) {
	ctx := context.Background()
	m := New()

	for i, id := range []string{"a", "b", "c"} {
		ref, err := m.AppendTransaction(ctx, sheets.Row{ID: id, Label: "Food", Amount: "1.00"})
		if err != nil {
			t.Fatalf("AppendTransaction(%s) error = %v", id, err)
		}
		if want := "mem:" + string(rune('1'+i)); ref != want {
			t.Errorf("ref = %s, want %s", ref, want)
		}
	}

	found, err := m.DeleteTransaction(ctx, "b")
	if err != nil || !found {
		t.Fatalf("DeleteTransaction(b) = %v, %v", found, err)
	}
	found, err = m.DeleteTransaction(ctx, "missing")
	if err != nil || found {
		t.Fatalf("DeleteTransaction(missing) = %v, %v", found, err)
	}

	rows := m.Rows()
	if len(rows) != 2 || rows[0].ID != "a" || rows[1].ID != "c" {
		t.Errorf("Rows() = %+v", rows)
	}
}

func TestMirror_Err(t *testing.T) {
	m := New()
	m.Err = errors.New("quota exceeded")

	if _, err := m.AppendTransaction(context.Background(), sheets.Row{ID: "a"}); err == nil {
		t.Error("expected append error")
	}
	if _, err := m.DeleteTransaction(context.Background(), "a"); err == nil {
		t.Error("expected delete error")
	}
}

func TestRowValues(t *testing.T) {
	r := sheets.Row{ID: "id", OwnerID: "o", Kind: "expense", Label: "Food", Amount: "12.50", Date: "2024-03-01", Icon: "🍔"}
	v := r.Values()
	if len(v) != len(sheets.Header) {
		t.Fatalf("Values() has %d cells, header has %d", len(v), len(sheets.Header))
	}
	if v[0] != "id" || v[4] != "12.50" || v[6] != "🍔" {
		t.Errorf("Values() = %v", v)
	}
}
