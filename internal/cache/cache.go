// Package cache holds in-process caches for computed reports.
package cache

import (
	"sync"
	"time"

	"fintrack/internal/log"
)

// Cache defines a generic keyed cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// DeletePrefix removes every key starting with prefix and reports how many.
	DeletePrefix(prefix string) int
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry over registered caches.
type Manager struct {
	mu       sync.Mutex
	caches   []Cleaner
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
	logger   *log.Logger
}

func NewManager() *Manager {
	return &Manager{
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: log.Default(log.ComponentCache),
	}
}

// Register adds a cache to the cleanup cycle.
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	m.caches = append(m.caches, c)
	m.mu.Unlock()
}

// StartCleanup begins periodic cleanup of all registered caches.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	go m.loop(interval)
}

func (m *Manager) loop(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 {
				m.logger.Debug("Expired cache entries removed", log.FieldCount, n)
			}
		case <-m.stop:
			return
		}
	}
}

// CleanAll runs one expiry pass and returns the number of removed entries.
func (m *Manager) CleanAll() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// Stop ends the cleanup goroutine. Safe to call more than once or without Start.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.mu.Lock()
		started := m.started
		m.mu.Unlock()
		if started {
			<-m.done
		}
	})
}
