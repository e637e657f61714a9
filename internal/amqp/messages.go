package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// EventType names what happened to a transaction.
type EventType string

const (
	EventCreated EventType = "created"
	EventDeleted EventType = "deleted"
)

// TransactionEvent is published after a transaction is stored or removed.
// It carries the full record so consumers never read the API's database.
type TransactionEvent struct {
	Type        EventType `json:"type"`
	Kind        core.Kind `json:"kind"`
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Label       string    `json:"label,omitempty"`
	AmountCents int64     `json:"amountCents,omitempty"`
	Date        string    `json:"date,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewCreatedEvent describes a freshly stored transaction.
func NewCreatedEvent(t core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Type:        EventCreated,
		Kind:        t.Kind,
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Label:       t.Label,
		AmountCents: t.Amount.Cents,
		Date:        t.Date.String(),
		Icon:        t.Icon,
		Timestamp:   time.Now().UTC(),
	}
}

// NewDeletedEvent describes a removed transaction.
func NewDeletedEvent(owner string, kind core.Kind, id string) *TransactionEvent {
	return &TransactionEvent{
		Type:      EventDeleted,
		Kind:      kind,
		ID:        id,
		OwnerID:   owner,
		Timestamp: time.Now().UTC(),
	}
}

// Amount returns the event amount as Money.
func (m *TransactionEvent) Amount() core.Money {
	return core.Money{Cents: m.AmountCents}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventFromJSON decodes and sanity-checks an event body.
func EventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != EventCreated && msg.Type != EventDeleted {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.ID == "" {
		return nil, errors.New("event without id")
	}
	return &msg, nil
}
