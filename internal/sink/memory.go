package sink

import (
	"context"
	"sync"

	"lambda-comments/internal/models"
)

// Memory keeps records in process. It backs the dev server and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[string]models.AcceptedRecord
}

// NewMemory builds an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]models.AcceptedRecord)}
}

// Commit implements Sink.
func (m *Memory) Commit(ctx context.Context, rec models.AcceptedRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rec.ID = NewID()
	m.mu.Lock()
	m.records[rec.ID] = rec
	m.mu.Unlock()
	return rec.ID, nil
}

// Get returns the record stored under id.
func (m *Memory) Get(id string) (models.AcceptedRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	return rec, ok
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
