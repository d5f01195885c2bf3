// Package payment provides the status store for mobile-money payment records.
package payment

import (
	"context"
	"sync"
)

// StatusStore defines the reference-keyed status table fed by the provider
// webhook. Three handlers share one store: initiation writes the seed record,
// the webhook receiver merges callbacks, and the status query reads.
//
// Entries live for the store's lifetime; there is no delete. A reference is
// never reused.
type StatusStore interface {
	// Get returns the record for a reference. The boolean reports whether an
	// entry exists; a missing entry is not an error.
	Get(ctx context.Context, reference string) (Record, bool, error)

	// Put stores a record wholesale, overwriting any existing entry.
	Put(ctx context.Context, reference string, record Record) error

	// Merge overlays a provider payload onto the existing entry, creating one
	// if absent, and recomputes the status. Returns the merged record.
	Merge(ctx context.Context, reference string, payload map[string]any) (Record, error)
}

// InMemoryStatusStore implements StatusStore with process-local storage.
// This is the default backing for single-process deployments; records are
// volatile and vanish on restart.
type InMemoryStatusStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryStatusStore creates an empty in-memory status store.
func NewInMemoryStatusStore() *InMemoryStatusStore {
	return &InMemoryStatusStore{
		records: make(map[string]Record),
	}
}

// Get returns a copy of the record for the reference, if present.
func (s *InMemoryStatusStore) Get(_ context.Context, reference string) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[reference]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

// Put stores a copy of the record, overwriting any existing entry.
func (s *InMemoryStatusStore) Put(_ context.Context, reference string, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[reference] = record.Clone()
	return nil
}

// Merge overlays the payload onto the stored record under the write lock, so
// concurrent webhook deliveries for the same reference merge rather than
// race.
func (s *InMemoryStatusStore) Merge(_ context.Context, reference string, payload map[string]any) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[reference]
	if !ok {
		record = make(Record, len(payload)+1)
		s.records[reference] = record
	}
	record.Overlay(payload)
	return record.Clone(), nil
}
