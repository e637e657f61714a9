// Package memory provides an in-process transaction store used by tests and
// by DATA_BACKEND=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/query"
	"fintrack/internal/storage"
)

type record struct {
	seq int64
	tx  core.Transaction
}

// Store keeps transactions in memory, safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records []record
	nextSeq int64
	closed  bool
	now     func() time.Time

	// FailInsert, when set, is returned by Create and InsertMany.
	FailInsert error
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now}
}

// WithClock overrides the CreatedAt clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	out, err := s.InsertMany(ctx, []core.Transaction{t})
	if err != nil {
		return core.Transaction{}, err
	}
	return out[0], nil
}

func (s *Store) InsertMany(ctx context.Context, ts []core.Transaction) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, storage.ErrClosed
	}
	if s.FailInsert != nil {
		return nil, s.FailInsert
	}
	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		t.ID = uuid.NewString()
		t.CreatedAt = s.now().UTC()
		s.nextSeq++
		s.records = append(s.records, record{seq: s.nextSeq, tx: t})
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) matching(f query.Filter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrClosed
	}
	if f.OwnerID == "" {
		return nil, storage.ErrNoOwner
	}
	var hits []record
	for _, r := range s.records {
		if f.Matches(r.tx) {
			hits = append(hits, r)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		di, dj := hits[i].tx.Date, hits[j].tx.Date
		if !di.Equal(dj.Time) {
			return di.After(dj)
		}
		return hits[i].seq < hits[j].seq
	})
	out := make([]core.Transaction, len(hits))
	for i, r := range hits {
		out[i] = r.tx
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, f query.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	hits, err := s.matching(f)
	return len(hits), err
}

func (s *Store) Find(ctx context.Context, f query.Filter, offset, limit int) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hits, err := s.matching(f)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(hits) {
		return nil, nil
	}
	end := len(hits)
	if limit >= 0 && limit < end-offset {
		end = offset + limit
	}
	return hits[offset:end], nil
}

func (s *Store) ListAll(ctx context.Context, f query.Filter) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.matching(f)
}

func (s *Store) Delete(ctx context.Context, owner string, kind core.Kind, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, storage.ErrClosed
	}
	for i, r := range s.records {
		if r.tx.ID == id && r.tx.OwnerID == owner && r.tx.Kind == kind {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrClosed
	}
	return ctx.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
