package storage

import (
	"context"
	"sync"
	"time"

	"shopassist/pkg"
)

type memoryEntry struct {
	conversation *pkg.ConversationContext
	expiresAt    time.Time
}

// MemoryRepository is an in-process Repository for development and tests.
// Entries expire lazily on access; Cleanup sweeps the rest.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryRepository) Save(_ context.Context, conversation *pkg.ConversationContext) error {
	if err := validateForSave(conversation); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[conversation.SessionID] = memoryEntry{
		conversation: conversation,
		expiresAt:    m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryRepository) Load(_ context.Context, sessionID string) (*pkg.ConversationContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.now().After(entry.expiresAt) {
		delete(m.sessions, sessionID)
		return nil, ErrSessionNotFound
	}

	// Sliding expiry, matching the Redis repository.
	entry.expiresAt = m.now().Add(m.ttl)
	m.sessions[sessionID] = entry
	return entry.conversation, nil
}

func (m *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// Cleanup removes every expired session and reports how many were dropped.
func (m *MemoryRepository) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := m.now()
	for id, entry := range m.sessions {
		if now.After(entry.expiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored sessions, expired or not.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]memoryEntry)
	return nil
}

func validateForSave(conversation *pkg.ConversationContext) error {
	if conversation == nil || conversation.SessionID == "" {
		return ErrInvalidSession
	}
	return nil
}
