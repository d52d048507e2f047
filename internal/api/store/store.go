// Package store keeps finished sweep results in memory for later retrieval.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"battery-payback/internal/sweep"
)

// Entry is a stored sweep result.
type Entry struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
	Result    *sweep.Result
}

// Store is an in-memory result store with per-entry expiry. A TTL <= 0
// keeps entries until the process exits.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores res under a fresh random ID.
func (s *Store) Put(res *sweep.Result) *Entry {
	now := s.now()
	e := &Entry{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Result:    res,
	}
	if s.ttl > 0 {
		e.ExpiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
	return e
}

// Get retrieves an entry if present and not expired.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || s.expired(e, s.now()) {
		return nil, false
	}
	return e, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Prune removes expired entries and returns how many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Run prunes expired entries every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

func (s *Store) expired(e *Entry, now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
