package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/sheets"
)

// Mirror is an in-process TransactionMirror used when no spreadsheet is
// configured and in tests.
type Mirror struct {
	mu       sync.Mutex
	rows     []sheets.Row
	appended int

	// Err, when set, is returned by every call.
	Err error
}

var _ sheets.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (m *Mirror) AppendTransaction(_ context.Context, row sheets.Row) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.rows = append(m.rows, row)
	m.appended++
	return fmt.Sprintf("mem:%d", m.appended), nil
}

// DeleteTransaction removes the first row carrying id.
func (m *Mirror) DeleteTransaction(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Rows returns a copy of the mirrored rows in insertion order.
func (m *Mirror) Rows() []sheets.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sheets.Row(nil), m.rows...)
}
