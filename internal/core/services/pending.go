package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/quaestor/internal/core/domain"
)

// PendingStore is the single-process mapping from user ID to their
// pending question. All operations are read-modify-write on a single
// map entry, serialized by a mutex so parallel event delivery cannot
// lose updates between MarkPaid and Clear.
//
// Entries never expire: the one-entry-per-user invariant bounds growth
// to the active user set, and a process restart drops all state (users
// re-ask).
type PendingStore struct {
	mu      sync.Mutex
	entries map[string]*domain.PendingQuestion
	now     func() time.Time
}

// NewPendingStore creates an empty store.
func NewPendingStore() *PendingStore {
	return &PendingStore{
		entries: make(map[string]*domain.PendingQuestion),
		now:     time.Now,
	}
}

// Park records a question for the user, unconditionally overwriting
// any existing entry, resetting TipReceived, and stamping the current
// time. The prior question is lost, not queued.
func (s *PendingStore) Park(userID, question, threadID, channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[userID] = &domain.PendingQuestion{
		UserID:    userID,
		Question:  question,
		ThreadID:  threadID,
		ChannelID: channelID,
		CreatedAt: s.now(),
	}
}

// Get returns a copy of the user's pending question, if any.
func (s *PendingStore) Get(userID string) (domain.PendingQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return domain.PendingQuestion{}, false
	}
	return *entry, true
}

// MarkPaid sets TipReceived on the user's entry. No-op if absent.
func (s *PendingStore) MarkPaid(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[userID]; ok {
		entry.TipReceived = true
	}
}

// ReplaceQuestion swaps the question text on an existing entry,
// preserving TipReceived and timestamps. No-op if absent. Used when a
// paid user supplies new text on a retry.
func (s *PendingStore) ReplaceQuestion(userID, question string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[userID]; ok {
		entry.Question = question
	}
}

// Clear removes the user's entry entirely. Called only after a
// confirmed successful answer delivery.
func (s *PendingStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len returns the number of pending entries.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
