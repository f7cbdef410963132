package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in a map. Entries are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry), now: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Entry, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if e.expiredAt(s.now()) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) Put(ctx context.Context, e *Entry) error {
	if err := ValidateID(e.ID); err != nil {
		return err
	}
	cp := *e
	cp.Document = append([]byte(nil), e.Document...)
	s.mu.Lock()
	s.entries[e.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if e.expiredAt(now) {
			delete(s.entries, id)
		}
	}
	return nil
}

// Len returns the number of entries held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
