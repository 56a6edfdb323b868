package metadata

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/filedrop/internal/common"
)

// MemoryStore is a process-local Store. Its contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Put(_ context.Context, rec Record) error {
	if rec.Key == "" {
		return fmt.Errorf("record without key: %w", common.ErrorValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.Key]; ok {
		return fmt.Errorf("record %q: %w", rec.Key, common.ErrorAlreadyExists)
	}
	m.records[rec.Key] = rec
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return Record{}, fmt.Errorf("record %q: %w", key, common.ErrorNotFound)
	}
	return rec, nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
