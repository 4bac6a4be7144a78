package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/careergap-web/internal/errors"
)

// MemoryRepo keeps every browser's values in process memory
type MemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]map[Key]string // sessionID -> key -> value
}

var _ Repo = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		sessions: make(map[string]map[Key]string),
	}
}

func (r *MemoryRepo) Store(sessionID string) Store {
	return &memoryStore{repo: r, sessionID: sessionID}
}

// Len returns the number of browser sessions holding at least one value
func (r *MemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

type memoryStore struct {
	repo      *MemoryRepo
	sessionID string
}

func (s *memoryStore) Get(_ context.Context, key Key) (string, error) {
	if s.sessionID == "" {
		return "", errors.ErrSessionIDRequired
	}

	s.repo.mu.RLock()
	defer s.repo.mu.RUnlock()

	return s.repo.sessions[s.sessionID][key], nil
}

func (s *memoryStore) Set(_ context.Context, key Key, value string) error {
	if s.sessionID == "" {
		return errors.ErrSessionIDRequired
	}

	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	values, ok := s.repo.sessions[s.sessionID]
	if !ok {
		values = make(map[Key]string)
		s.repo.sessions[s.sessionID] = values
	}
	values[key] = value
	return nil
}

func (s *memoryStore) Clear(_ context.Context, keys ...Key) error {
	if s.sessionID == "" {
		return errors.ErrSessionIDRequired
	}

	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()

	values, ok := s.repo.sessions[s.sessionID]
	if !ok {
		return nil // Already empty
	}
	for _, k := range keys {
		delete(values, k)
	}

	// Clean up empty session map
	if len(keys) == 0 || len(values) == 0 {
		delete(s.repo.sessions, s.sessionID)
	}
	return nil
}
