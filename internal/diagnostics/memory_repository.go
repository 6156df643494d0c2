package diagnostics

import (
	"context"
	"sync"
)

// DefaultCapacity bounds the in-memory repository.
const DefaultCapacity = 256

// InMemoryRepository keeps the last N records in a ring buffer.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []*Record
	next    int
	full    bool
}

// NewInMemoryRepository creates a ring holding up to capacity records.
// A non-positive capacity selects DefaultCapacity.
func NewInMemoryRepository(capacity int) *InMemoryRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryRepository{records: make([]*Record, capacity)}
}

// Save appends a record, evicting the oldest once the ring is full.
func (r *InMemoryRepository) Save(_ context.Context, record *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *record
	r.records[r.next] = &c
	r.next = (r.next + 1) % len(r.records)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

// List returns up to limit records, newest first.
func (r *InMemoryRepository) List(_ context.Context, limit int) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultListLimit
	}

	size := r.next
	if r.full {
		size = len(r.records)
	}
	if limit > size {
		limit = size
	}

	items := make([]*Record, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.next - 1 - i + len(r.records)) % len(r.records)
		c := *r.records[idx]
		items = append(items, &c)
	}

	return items, nil
}

// Len returns how many records are held.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.full {
		return len(r.records)
	}
	return r.next
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
