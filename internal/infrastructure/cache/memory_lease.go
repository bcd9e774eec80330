package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type leaseEntry struct {
	token     string
	expiresAt time.Time
}

// InMemoryLease is a process-local lease for single-instance deployments
// and tests. It does not coordinate across processes.
type InMemoryLease struct {
	mu        sync.Mutex
	entries   map[string]leaseEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLease creates an in-memory lease with a background sweep of
// expired keys
func NewInMemoryLease() *InMemoryLease {
	l := &InMemoryLease{
		entries:  make(map[string]leaseEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.cleanupLoop()
	return l
}

// Acquire takes the key unless an unexpired holder owns it
func (l *InMemoryLease) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, held := l.entries[key]; held && now.Before(e.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.entries[key] = leaseEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees the key if token still owns it
func (l *InMemoryLease) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, held := l.entries[key]; held && e.token == token {
		delete(l.entries, key)
	}
	return nil
}

// Close stops the sweep. Safe to call multiple times.
func (l *InMemoryLease) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *InMemoryLease) cleanupLoop() {
	defer l.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanup()
		}
	}
}

func (l *InMemoryLease) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, e := range l.entries {
		if !now.Before(e.expiresAt) {
			delete(l.entries, key)
		}
	}
}

// Size returns the number of tracked keys
func (l *InMemoryLease) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
