package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/query"
	"fintrack/internal/storage"
)

const (
	summaryCacheSize = 256
	summaryCacheTTL  = 5 * time.Minute
)

// EventPublisher is the outbound port for transaction events.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService orchestrates expense and income operations: it
// validates input, persists through the store, keeps the summary cache
// coherent and announces changes on the event bus.
type TransactionService struct {
	store     storage.Store
	publisher EventPublisher
	summaries cache.Cache[core.Summary]
	now       func() time.Time
	logger    *log.Logger
	events    *log.StructuredLogger
}

// Option customises a TransactionService.
type Option func(*TransactionService)

// WithClock sets the clock used to anchor relative date ranges.
func WithClock(now func() time.Time) Option {
	return func(s *TransactionService) { s.now = now }
}

// WithSummaryCache replaces the default summary cache.
func WithSummaryCache(c cache.Cache[core.Summary]) Option {
	return func(s *TransactionService) { s.summaries = c }
}

// NewTransactionService wires a service. publisher may be nil, in which case
// events are skipped.
func NewTransactionService(store storage.Store, publisher EventPublisher, opts ...Option) *TransactionService {
	s := &TransactionService{
		store:     store,
		publisher: publisher,
		summaries: cache.NewLRUCache[core.Summary](summaryCacheSize, summaryCacheTTL),
		now:       time.Now,
		logger:    log.Default(log.ComponentTransaction),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.events = log.NewStructuredLogger(s.logger)
	return s
}

// SummaryCache exposes the cache so callers can register it for expiry.
func (s *TransactionService) SummaryCache() cache.Cache[core.Summary] {
	return s.summaries
}

// Add validates and stores a single transaction.
func (s *TransactionService) Add(ctx context.Context, owner string, kind core.Kind, c core.Candidate) (core.Transaction, error) {
	t, err := c.Build(owner, kind)
	if err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", kind, err)
	}
	s.invalidate(owner)
	s.events.LogTransactionCreated(ctx, created.ID, owner, kind.String(), created.Label, created.Amount.Cents)

	s.publish(ctx, amqp.NewCreatedEvent(created))
	return created, nil
}

// BulkAdd validates every candidate before inserting any. The first invalid
// entry rejects the whole batch with a *core.EntryError; store failures
// insert nothing.
func (s *TransactionService) BulkAdd(ctx context.Context, owner string, kind core.Kind, cs []core.Candidate) ([]core.Transaction, error) {
	if len(cs) == 0 {
		return nil, core.ErrEmptyBatch
	}

	batch := make([]core.Transaction, 0, len(cs))
	for i, c := range cs {
		t, err := c.Build(owner, kind)
		if err != nil {
			return nil, &core.EntryError{Index: i + 1, Kind: kind, Err: err}
		}
		batch = append(batch, t)
	}

	created, err := s.store.InsertMany(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("save %s batch: %w", kind, err)
	}
	s.invalidate(owner)
	s.logger.InfoContext(ctx, "Transactions created",
		log.FieldOwnerID, owner,
		log.FieldKind, kind,
		log.FieldCount, len(created),
		log.FieldOperation, log.OpBulkCreate)

	for _, t := range created {
		s.publish(ctx, amqp.NewCreatedEvent(t))
	}
	return created, nil
}

// List returns one page of the owner's transactions. Count and page are read
// concurrently against the same filter.
func (s *TransactionService) List(ctx context.Context, owner string, kind core.Kind, p query.Params) (query.Page[core.Transaction], error) {
	p = p.Normalize()
	f := s.filter(owner, kind, p)

	var (
		total int
		items []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Count(gctx, f)
		total = n
		return err
	})
	g.Go(func() error {
		list, err := s.store.Find(gctx, f, p.Offset(), p.PageSize)
		items = list
		return err
	})
	if err := g.Wait(); err != nil {
		return query.Page[core.Transaction]{}, fmt.Errorf("list %s: %w", kind.Plural(), err)
	}
	return query.NewPage(items, p, total), nil
}

// Export returns every transaction matching the params, newest first.
// Pagination fields are ignored.
func (s *TransactionService) Export(ctx context.Context, owner string, kind core.Kind, p query.Params) ([]core.Transaction, error) {
	list, err := s.store.ListAll(ctx, s.filter(owner, kind, p.Normalize()))
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", kind.Plural(), err)
	}
	return list, nil
}

// Summary returns the chart report for the matching transactions, served
// from cache until the owner's data changes.
func (s *TransactionService) Summary(ctx context.Context, owner string, kind core.Kind, p query.Params) (core.Summary, error) {
	f := s.filter(owner, kind, p.Normalize())
	key := f.Key()
	if cached, ok := s.summaries.Get(key); ok {
		return cached, nil
	}

	list, err := s.store.ListAll(ctx, f)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize %s: %w", kind.Plural(), err)
	}
	summary := core.Summarize(list)
	s.summaries.Set(key, summary)
	return summary, nil
}

// Delete removes the owner's transaction. Unknown ids and ids owned by
// someone else are a silent no-op.
func (s *TransactionService) Delete(ctx context.Context, owner string, kind core.Kind, id string) error {
	deleted, err := s.store.Delete(ctx, owner, kind, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if !deleted {
		s.logger.DebugContext(ctx, "Delete matched nothing",
			log.FieldTransactionID, id, log.FieldOwnerID, owner, log.FieldKind, kind)
		return nil
	}
	s.invalidate(owner)
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id, log.FieldOwnerID, owner, log.FieldKind, kind)
	s.publish(ctx, amqp.NewDeletedEvent(owner, kind, id))
	return nil
}

// Ping reports store readiness.
func (s *TransactionService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *TransactionService) filter(owner string, kind core.Kind, p query.Params) query.Filter {
	f := query.Resolve(p, s.now())
	f.OwnerID = owner
	f.Kind = kind
	return f
}

func (s *TransactionService) invalidate(owner string) {
	s.summaries.DeletePrefix(owner + "|")
}

// publish never fails the caller; the record is already stored.
func (s *TransactionService) publish(ctx context.Context, event *amqp.TransactionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			"type", event.Type,
			log.FieldTransactionID, event.ID,
			log.FieldError, err)
	}
}

// Close closes the store and, when it supports it, the publisher.
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
