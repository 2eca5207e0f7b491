package repos

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/dropscout/internal/contracts"
)

// DefaultMemoryCapacity bounds MemoryHistory when no capacity is given
const DefaultMemoryCapacity = 1000

// MemoryHistory is a bounded in-process history used when no database is configured.
// The oldest records are evicted first.
type MemoryHistory struct {
	mu       sync.RWMutex
	records  []contracts.HistoryRecord
	capacity int
	nextID   int64
	now      func() time.Time
}

// NewMemoryHistory creates an in-memory history
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryHistory{capacity: capacity, now: time.Now}
}

// Save appends record and fills its ID and CreatedAt
func (m *MemoryHistory) Save(ctx context.Context, record *contracts.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	record.ID = m.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = m.now().UTC()
	}

	m.records = append(m.records, *record)
	if over := len(m.records) - m.capacity; over > 0 {
		m.records = append(m.records[:0:0], m.records[over:]...)
	}
	return nil
}

// Recent returns records created at or after since, newest first
func (m *MemoryHistory) Recent(ctx context.Context, since time.Time, limit int) ([]contracts.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contracts.HistoryRecord, 0)
	for i := len(m.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if rec := m.records[i]; !rec.CreatedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Len returns the number of stored records
func (m *MemoryHistory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
