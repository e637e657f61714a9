// Package worker consumes transaction events and keeps the spreadsheet
// mirror in step with the API's store.
package worker

import (
	"context"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// MirrorWorker applies transaction events to a TransactionMirror.
type MirrorWorker struct {
	mirror sheets.TransactionMirror
	logger *log.Logger
}

func NewMirrorWorker(mirror sheets.TransactionMirror, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &MirrorWorker{
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes a single event from the queue. A returned error
// makes the consumer requeue the message.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		"type", event.Type,
		log.FieldTransactionID, event.ID,
		log.FieldKind, event.Kind)

	switch event.Type {
	case amqp.EventCreated:
		return w.handleCreated(ctx, event)
	case amqp.EventDeleted:
		return w.handleDeleted(ctx, event)
	default:
		return fmt.Errorf("unsupported event type %q", event.Type)
	}
}

func (w *MirrorWorker) handleCreated(ctx context.Context, event *amqp.TransactionEvent) error {
	ref, err := w.mirror.AppendTransaction(ctx, RowFromEvent(event))
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", event.ID, err)
	}

	w.logger.InfoContext(ctx, "Mirrored transaction",
		log.FieldTransactionID, event.ID,
		log.FieldOwnerID, event.OwnerID,
		log.FieldSheetsRef, ref,
		log.FieldAmountCents, event.AmountCents)
	return nil
}

func (w *MirrorWorker) handleDeleted(ctx context.Context, event *amqp.TransactionEvent) error {
	found, err := w.mirror.DeleteTransaction(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", event.ID, err)
	}
	if !found {
		w.logger.WarnContext(ctx, "Mirror row not found, nothing to delete",
			log.FieldTransactionID, event.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Removed mirrored transaction",
		log.FieldTransactionID, event.ID,
		log.FieldOwnerID, event.OwnerID)
	return nil
}

// RowFromEvent formats a created event as a mirror row.
func RowFromEvent(event *amqp.TransactionEvent) sheets.Row {
	return sheets.Row{
		ID:      event.ID,
		OwnerID: event.OwnerID,
		Kind:    string(event.Kind),
		Label:   event.Label,
		Amount:  event.Amount().String(),
		Date:    event.Date,
		Icon:    event.Icon,
	}
}
