// Package session keeps per-browser server-side state: the pending OAuth state value and
// the YouTube credential. Nothing here reaches the relational store.
package session

import (
	"context"
	"sync"
	"time"

	"dashboard/internal/models"
)

type Session struct {
	ID         string
	State      string
	Credential *models.OAuthCredential
	// Permanent sessions get a persistent cookie; others live until the browser closes.
	Permanent bool
}

func (s *Session) clone() *Session {
	out := *s
	if s.Credential != nil {
		cred := *s.Credential
		cred.Scopes = append([]string(nil), s.Credential.Scopes...)
		out.Credential = &cred
	}
	return &out
}

// Store persists sessions by id. Get returns nil, nil for unknown or expired ids.
// Update is an atomic read-modify-write: fn sees the stored session, or an empty one
// when id is unknown, and concurrent updates of the same id never interleave.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(s *Session)) (*Session, error)
	Delete(ctx context.Context, id string) error
}

type entry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore is a process-local Store with a sliding expiry: every Get or Update
// pushes the deadline ttl into the future. Expired entries are dropped on access.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	now := m.now()
	if !now.Before(e.expiresAt) {
		delete(m.items, id)
		return nil, nil
	}
	e.expiresAt = now.Add(m.ttl)
	m.items[id] = e
	return e.session.clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(s *Session)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	current := &Session{ID: id}
	if e, ok := m.items[id]; ok && now.Before(e.expiresAt) {
		current = e.session.clone()
	}
	fn(current)
	current.ID = id

	m.items[id] = entry{session: current.clone(), expiresAt: now.Add(m.ttl)}
	return current, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
