package storage

import (
	"context"
	"errors"

	"fintrack/internal/core"
	"fintrack/internal/query"
)

var (
	// ErrClosed is returned by stores used after Close.
	ErrClosed = errors.New("store closed")
	// ErrNoOwner is returned by reads whose filter names no owner.
	ErrNoOwner = errors.New("filter has no owner")
)

// Store persists transactions. Every read and delete is scoped by the owner
// and kind carried in the filter or arguments; a read without an owner fails
// with ErrNoOwner.
type Store interface {
	// Create inserts one transaction, assigning its ID and CreatedAt.
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
	// InsertMany inserts all transactions or none.
	InsertMany(ctx context.Context, ts []core.Transaction) ([]core.Transaction, error)
	Count(ctx context.Context, f query.Filter) (int, error)
	// Find returns one page ordered by date descending, then insertion order.
	// A negative offset counts as zero.
	Find(ctx context.Context, f query.Filter, offset, limit int) ([]core.Transaction, error)
	// ListAll returns every match in the same order as Find.
	ListAll(ctx context.Context, f query.Filter) ([]core.Transaction, error)
	// Delete removes a transaction and reports whether a row matched.
	Delete(ctx context.Context, owner string, kind core.Kind, id string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
