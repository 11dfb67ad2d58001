// Package memory provides a process-local domain.Gateway.
package memory

import (
	"context"
	"sync"

	"github.com/msomdec/bank-portal/internal/domain"
)

// Store keeps values in a map. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	values  map[string]string
	failSet error
}

// New creates an empty Store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSet != nil {
		return s.failSet
	}
	s.values[key] = value
	return nil
}

// FailWrites makes every subsequent Set return err until called with nil.
// It simulates an unavailable or full backing store.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSet = err
}
