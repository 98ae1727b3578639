package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store. It is used by tests and by `serve --memory`
// for throwaway demos; contents are lost on exit.
type Memory struct {
	mu      sync.RWMutex
	records []Record
	index   map[string]int
	stats   map[string]int64
	broker  *Broker
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		index:  make(map[string]int),
		stats:  make(map[string]int64),
		broker: NewBroker(),
		now:    time.Now,
	}
}

// Broker exposes the change broker, mainly for tests.
func (m *Memory) Broker() *Broker { return m.broker }

// less orders records newest first, ties broken by id descending.
func less(a, b Record) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.ID > b.ID
}

// QueryDescending implements Store.
func (m *Memory) QueryDescending(_ context.Context, limit int, after Cursor) ([]Record, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var pivot *Record
	if !after.IsZero() {
		i, ok := m.index[string(after)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCursorNotFound, after)
		}
		p := m.records[i]
		pivot = &p
	}

	sorted := make([]Record, len(m.records))
	copy(sorted, m.records)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })

	var out []Record
	for _, r := range sorted {
		if pivot != nil && !less(*pivot, r) {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// AddRecord implements Store.
func (m *Memory) AddRecord(_ context.Context, r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = m.now()
	}
	r.Timestamp = r.Timestamp.UTC()

	m.mu.Lock()
	if _, dup := m.index[r.ID]; dup {
		m.mu.Unlock()
		return Record{}, fmt.Errorf("inserting history record: duplicate id %s", r.ID)
	}
	m.index[r.ID] = len(m.records)
	m.records = append(m.records, r)
	m.mu.Unlock()

	m.broker.Publish(CollectionHistory)
	return r, nil
}

// Increment implements Store.
func (m *Memory) Increment(_ context.Context, docID string, delta int64) error {
	m.mu.Lock()
	m.stats[docID] += delta
	m.mu.Unlock()

	m.broker.Publish(statsTopic(docID))
	return nil
}

// Stats implements Store.
func (m *Memory) Stats(_ context.Context, docID string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.stats[docID]
	return Stats{ID: docID, VisitorCount: n, Exists: ok}, nil
}

// WatchRecent implements Store.
func (m *Memory) WatchRecent(limit int, fn func([]Record), opts ...WatchOption) *Subscription {
	return watch(m.broker, CollectionHistory, func(ctx context.Context) ([]Record, error) {
		return m.QueryDescending(ctx, limit, "")
	}, fn, opts)
}

// WatchStats implements Store.
func (m *Memory) WatchStats(docID string, fn func(Stats), opts ...WatchOption) *Subscription {
	return watch(m.broker, statsTopic(docID), func(ctx context.Context) (Stats, error) {
		return m.Stats(ctx, docID)
	}, fn, opts)
}
