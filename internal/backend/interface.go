package backend

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/query"
)

// Backend is the transaction API served over HTTP.
type Backend interface {
	Add(ctx context.Context, owner string, kind core.Kind, c core.Candidate) (core.Transaction, error)
	BulkAdd(ctx context.Context, owner string, kind core.Kind, cs []core.Candidate) ([]core.Transaction, error)
	List(ctx context.Context, owner string, kind core.Kind, p query.Params) (query.Page[core.Transaction], error)
	Export(ctx context.Context, owner string, kind core.Kind, p query.Params) ([]core.Transaction, error)
	Summary(ctx context.Context, owner string, kind core.Kind, p query.Params) (core.Summary, error)
	Delete(ctx context.Context, owner string, kind core.Kind, id string) error
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and its cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
	// EventsEnabled reports whether an AMQP publisher was connected.
	EventsEnabled bool
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Optional event publishing, shared by every backend type
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
