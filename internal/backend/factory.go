package backend

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/storage/memory"
)

const cacheCleanupInterval = time.Minute

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	// dial opens the event publisher; replaced in tests.
	dial func(url, exchange, queue string) (*amqp.Client, error)
}

var _ Factory = (*DefaultFactory)(nil)

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial:   amqp.NewClient,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store storage.Store
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		store = repo
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.EventPublisher
	if client := f.connectAMQP(config); client != nil {
		publisher = client
	}

	svc := services.NewTransactionService(store, publisher)

	caches := cache.NewManager()
	if cleaner, ok := svc.SummaryCache().(cache.Cleaner); ok {
		caches.Register(cleaner)
	}
	caches.StartCleanup(cacheCleanupInterval)

	return &BackendResult{
		Backend:       svc,
		EventsEnabled: publisher != nil,
		Cleanup: func() error {
			caches.Stop()
			return svc.Close()
		},
	}, nil
}

// connectAMQP dials the broker when configured. A failure is logged and the
// backend keeps working without events.
func (f *DefaultFactory) connectAMQP(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
