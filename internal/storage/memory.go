package storage

import (
	"context"
	"log"
	"sync"
)

// MemoryStore keeps records in process memory. It backs local runs without
// Google credentials and the test suite. The category partitioning is kept
// so partition behavior stays observable in mock mode.
type MemoryStore struct {
	mu         sync.Mutex
	master     []Record
	byCategory map[string][]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byCategory: map[string][]Record{}}
}

func (m *MemoryStore) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = append(m.master, rec)
	if rec.Category != "" {
		m.byCategory[rec.Category] = append(m.byCategory[rec.Category], rec)
	}
	log.Printf("[Sheets MOCK] append: %v", rec.Row())
	return nil
}

func (m *MemoryStore) FindMostRecentByUser(_ context.Context, userID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.master) - 1; i >= 0; i-- {
		if m.master[i].UserID == userID {
			return m.master[i], nil
		}
	}
	return Record{}, ErrNotFound
}

func (m *MemoryStore) ListAll(_ context.Context, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]Record, len(m.master))
	copy(records, m.master)
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// Category returns the partition for one category, oldest first. Used by
// tests and local debugging.
func (m *MemoryStore) Category(category string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	part := make([]Record, len(m.byCategory[category]))
	copy(part, m.byCategory[category])
	return part
}
