// Package memory provides in-memory store implementations, primarily
// for tests and ephemeral sessions.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/quaestor/internal/core/domain"
	"github.com/custodia-labs/quaestor/internal/core/ports/driven"
)

var _ driven.ThreadLogStore = (*ThreadLogStore)(nil)

// ThreadLogStore is an in-memory thread log.
type ThreadLogStore struct {
	mu      sync.RWMutex
	entries map[string][]domain.ThreadEntry
}

// NewThreadLogStore creates an empty in-memory thread log.
func NewThreadLogStore() *ThreadLogStore {
	return &ThreadLogStore{
		entries: make(map[string][]domain.ThreadEntry),
	}
}

// Append adds an entry to the log, assigning an ID when empty.
func (s *ThreadLogStore) Append(_ context.Context, entry domain.ThreadEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ThreadID] = append(s.entries[entry.ThreadID], entry)
	return nil
}

// List returns all entries for a thread in insertion order.
func (s *ThreadLogStore) List(_ context.Context, threadID string) ([]domain.ThreadEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.entries[threadID]
	out := make([]domain.ThreadEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// Close releases resources.
func (s *ThreadLogStore) Close() error {
	return nil
}
