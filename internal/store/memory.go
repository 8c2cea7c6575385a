// Package store holds uploaded datasets in process memory. The store is an
// explicit repository constructed once at startup and injected into its
// callers; ids are opaque auto-incremented integers it owns.
package store

import (
	"errors"
	"sort"
	"sync"

	"datawash/pkg/contracts/domain"
)

// ErrNotFound reports a dataset id the store does not hold.
var ErrNotFound = errors.New("dataset not found")

// MemoryStore is the in-memory dataset repository. It serializes concurrent
// access to records; tables inside a record are snapshots that callers must
// clone before mutating.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*domain.Dataset
}

// NewMemoryStore creates an empty store. Ids start at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		items:  make(map[int64]*domain.Dataset),
	}
}

// Create assigns the dataset its id and stores it.
func (s *MemoryStore) Create(ds *domain.Dataset) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds.ID = s.nextID
	s.nextID++

	dsCopy := *ds
	s.items[ds.ID] = &dsCopy
	return ds.ID
}

// Get retrieves a dataset by id.
func (s *MemoryStore) Get(id int64) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, exists := s.items[id]
	if !exists {
		return nil, ErrNotFound
	}

	// Return a copy to prevent external modification of the record.
	dsCopy := *ds
	return &dsCopy, nil
}

// List returns all datasets, newest id first.
func (s *MemoryStore) List() []*domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Dataset, 0, len(s.items))
	for _, ds := range s.items {
		dsCopy := *ds
		result = append(result, &dsCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result
}

// Update replaces an existing record.
func (s *MemoryStore) Update(ds *domain.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[ds.ID]; !exists {
		return ErrNotFound
	}

	dsCopy := *ds
	s.items[ds.ID] = &dsCopy
	return nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ErrNotFound
	}

	delete(s.items, id)
	return nil
}

// Count returns the number of stored datasets.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
