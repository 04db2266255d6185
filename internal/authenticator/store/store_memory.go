package store

import (
	"context"
	"sync"
	"time"
)

type storedPayload struct {
	blob     string
	storedAt time.Time
}

type payloadKey struct {
	token   string
	subject string
}

// InMemoryStore keeps payloads in a map with TTL expiry. Expired entries are
// dropped lazily on access.
type InMemoryStore struct {
	mu       sync.Mutex
	payloads map[payloadKey]storedPayload
	ttl      time.Duration
	now      func() time.Time
}

// NewInMemoryStore creates an in-memory store. A non-positive ttl falls back
// to DefaultTTL.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryStore{
		payloads: make(map[payloadKey]storedPayload),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put stores blob under (token, subject). Last write wins.
func (s *InMemoryStore) Put(_ context.Context, token, subject, blob string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads[payloadKey{token, subject}] = storedPayload{blob: blob, storedAt: s.now()}
	return nil
}

// Get returns the blob without consuming it.
func (s *InMemoryStore) Get(_ context.Context, token, subject string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(payloadKey{token, subject})
}

// Take returns the blob and removes it in the same critical section, so at
// most one caller observes a given payload.
func (s *InMemoryStore) Take(_ context.Context, token, subject string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := payloadKey{token, subject}
	blob, err := s.lookup(k)
	if err != nil {
		return "", err
	}
	delete(s.payloads, k)
	return blob, nil
}

// lookup must be called with mu held.
func (s *InMemoryStore) lookup(k payloadKey) (string, error) {
	p, ok := s.payloads[k]
	if !ok {
		return "", ErrNotFound
	}
	if s.now().Sub(p.storedAt) >= s.ttl {
		delete(s.payloads, k)
		return "", ErrNotFound
	}
	return p.blob, nil
}

// Len reports the number of stored payloads, expired ones included.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

// DeleteExpired drops every payload older than the TTL at now and reports how
// many were removed.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, p := range s.payloads {
		if now.Sub(p.storedAt) >= s.ttl {
			delete(s.payloads, k)
			n++
		}
	}
	return n, nil
}
