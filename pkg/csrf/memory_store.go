package csrf

import (
	"context"
	"slices"
	"sync"
	"time"
)

// sessionRecord holds the live token hashes for one session, oldest first.
type sessionRecord struct {
	hashes       []string
	lastActivity time.Time
}

// MemoryStore is the default in-process token store. Suitable for single
// instance deployments; multi-instance deployments need the Redis store so
// a token issued by one instance validates on another.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]*sessionRecord
	ttl       time.Duration
	maxTokens int

	now func() time.Time
}

// NewMemoryStore creates a memory store. Sessions idle longer than ttl are
// dropped; each session keeps at most maxTokens hashes.
func NewMemoryStore(ttl time.Duration, maxTokens int) *MemoryStore {
	if maxTokens <= 0 {
		maxTokens = 1
	}
	return &MemoryStore{
		sessions:  make(map[string]*sessionRecord),
		ttl:       ttl,
		maxTokens: maxTokens,
		now:       time.Now,
	}
}

func (s *MemoryStore) AddToken(_ context.Context, sessionID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := s.sessions[sessionID]
	if rec == nil || s.expired(rec, now) {
		rec = &sessionRecord{}
		s.sessions[sessionID] = rec
	}

	rec.hashes = append(rec.hashes, hash)
	if len(rec.hashes) > s.maxTokens {
		rec.hashes = rec.hashes[len(rec.hashes)-s.maxTokens:]
	}
	rec.lastActivity = now
	return nil
}

func (s *MemoryStore) HasToken(_ context.Context, sessionID, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.sessions[sessionID]
	if rec == nil {
		return false, nil
	}
	if s.expired(rec, s.now()) {
		delete(s.sessions, sessionID)
		return false, nil
	}
	return slices.Contains(rec.hashes, hash), nil
}

func (s *MemoryStore) ConsumeToken(_ context.Context, sessionID, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.sessions[sessionID]
	if rec == nil {
		return false, nil
	}

	now := s.now()
	if s.expired(rec, now) {
		delete(s.sessions, sessionID)
		return false, nil
	}

	i := slices.Index(rec.hashes, hash)
	if i < 0 {
		return false, nil
	}
	rec.hashes = slices.Delete(rec.hashes, i, i+1)
	rec.lastActivity = now
	return true, nil
}

func (s *MemoryStore) Sweep(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, rec := range s.sessions {
		if s.expired(rec, now) {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*sessionRecord)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(rec *sessionRecord, now time.Time) bool {
	return s.ttl > 0 && now.Sub(rec.lastActivity) > s.ttl
}
