package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datawash/pkg/contracts/domain"
)

func newDataset(name string) *domain.Dataset {
	return &domain.Dataset{
		Filename: name,
		Format:   domain.FormatCSV,
		Raw: &domain.Table{
			Columns: []string{"a"},
			Rows:    []domain.Row{{"a": domain.StringValue("1")}},
		},
	}
}

func TestMemoryStoreCreateAssignsSequentialIDs(t *testing.T) {
	s := NewMemoryStore()

	first := s.Create(newDataset("one.csv"))
	second := s.Create(newDataset("two.csv"))

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, 2, s.Count())
}

func TestMemoryStoreGet(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(newDataset("one.csv"))

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "one.csv", got.Filename)

	_, err = s.Get(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(newDataset("one.csv"))

	got, err := s.Get(id)
	require.NoError(t, err)
	got.Filename = "tampered.csv"

	again, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "one.csv", again.Filename)
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	s.Create(newDataset("one.csv"))
	s.Create(newDataset("two.csv"))
	s.Create(newDataset("three.csv"))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(1), list[2].ID)
}

func TestMemoryStoreUpdate(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(newDataset("one.csv"))

	ds, err := s.Get(id)
	require.NoError(t, err)
	ds.IsProcessed = true
	require.NoError(t, s.Update(ds))

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.True(t, got.IsProcessed)

	missing := newDataset("ghost.csv")
	missing.ID = 404
	assert.ErrorIs(t, s.Update(missing), ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	id := s.Create(newDataset("one.csv"))

	require.NoError(t, s.Delete(id))
	assert.Equal(t, 0, s.Count())
	assert.ErrorIs(t, s.Delete(id), ErrNotFound)

	// Deleted ids are not reused.
	next := s.Create(newDataset("two.csv"))
	assert.Equal(t, int64(2), next)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := s.Create(newDataset(fmt.Sprintf("file-%d.csv", n)))
			_, _ = s.Get(id)
			_ = s.List()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, s.Count())

	// Every id in 1..20 was handed out exactly once.
	seen := make(map[int64]bool)
	for _, ds := range s.List() {
		seen[ds.ID] = true
	}
	assert.Len(t, seen, 20)
}
