package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps submissions in memory. Data is lost when the process
// exits. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	submissions []*Submission
	maxEntries  int
}

// MemoryStoreConfig configures the memory store.
type MemoryStoreConfig struct {
	// MaxEntries caps stored submissions; the oldest entries are evicted
	// when the cap is reached. Default: 100,000.
	MaxEntries int
}

// NewMemoryStore creates an in-memory submission store with defaults.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithConfig(MemoryStoreConfig{})
}

// NewMemoryStoreWithConfig creates an in-memory store with custom limits.
func NewMemoryStoreWithConfig(cfg MemoryStoreConfig) *MemoryStore {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 100000
	}
	return &MemoryStore{maxEntries: cfg.MaxEntries}
}

// Record appends one submission, evicting the oldest when at capacity.
func (m *MemoryStore) Record(ctx context.Context, sub *Submission) error {
	if err := validateSubmission(sub); err != nil {
		return err
	}

	stored := *sub
	if stored.SubmittedAt.IsZero() {
		stored.SubmittedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.submissions) >= m.maxEntries {
		m.submissions = m.submissions[1:]
	}
	m.submissions = append(m.submissions, &stored)
	return nil
}

// CountSince returns the number of matching submissions at or after since.
func (m *MemoryStore) CountSince(ctx context.Context, employeeID, clauseID string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, sub := range m.submissions {
		if sub.EmployeeID == employeeID && sub.ClauseID == clauseID && !sub.SubmittedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// Prune removes submissions older than the cutoff.
func (m *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.submissions[:0]
	deleted := 0
	for _, sub := range m.submissions {
		if sub.SubmittedAt.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, sub)
	}
	m.submissions = kept
	return deleted, nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error { return nil }

// Size returns the number of stored submissions, for monitoring and tests.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.submissions)
}
