package worker

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets/memory"
)

func created(id string, cents int64) *amqp.TransactionEvent {
	return amqp.NewCreatedEvent(core.Transaction{
		ID:      id,
		OwnerID: "owner-1",
		Kind:    core.KindExpense,
		Label:   "Food",
		Amount:  core.Money{Cents: cents},
		Date:    core.NewDate(2024, 3, 1),
		Icon:    "🍔",
	})
}

func TestMirrorWorker_CreatedThenDeleted(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New()
	w := NewMirrorWorker(mirror, nil)

	for _, ev := range []*amqp.TransactionEvent{created("a", 1250), created("b", 300)} {
		if err := w.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("HandleEvent(created %s) error = %v", ev.ID, err)
		}
	}

	rows := mirror.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
	first := rows[0]
	if first.ID != "a" || first.Kind != "expense" || first.Amount != "12.50" || first.Date != "2024-03-01" || first.Label != "Food" {
		t.Errorf("row = %+v", first)
	}

	if err := w.HandleEvent(ctx, amqp.NewDeletedEvent("owner-1", core.KindExpense, "a")); err != nil {
		t.Fatalf("HandleEvent(deleted) error = %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 1 || rows[0].ID != "b" {
		t.Errorf("rows after delete = %+v", rows)
	}
}

func TestMirrorWorker_DeleteMissingRowIsNotAnError(t *testing.T) {
	w := NewMirrorWorker(memory.New(), nil)
	if err := w.HandleEvent(context.Background(), amqp.NewDeletedEvent("o", core.KindIncome, "ghost")); err != nil {
		t.Errorf("HandleEvent() error = %v", err)
	}
}

func TestMirrorWorker_MirrorFailureIsReturned(t *testing.T) {
	mirror := memory.New()
	mirror.Err = errors.New("quota exceeded")
	w := NewMirrorWorker(mirror, nil)

	tests := []struct {
		name  string
		event *amqp.TransactionEvent
	}{
		{"created", created("a", 100)},
		{"deleted", amqp.NewDeletedEvent("o", core.KindExpense, "a")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.HandleEvent(context.Background(), tt.event)
			if !errors.Is(err, mirror.Err) {
				t.Errorf("HandleEvent() error = %v, want wrapped %v", err, mirror.Err)
			}
		})
	}
}

func TestMirrorWorker_UnknownType(t *testing.T) {
	w := NewMirrorWorker(memory.New(), nil)
	if err := w.HandleEvent(context.Background(), &amqp.TransactionEvent{Type: "updated", ID: "x"}); err == nil {
		t.Error("expected error for unknown event type")
	}
}
