package history

import (
	"context"
	"testing"
	"time"

	"mercator-hq/ruler/pkg/engine"
)

func TestMemoryStoreCountSince(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	subs := []*Submission{
		{EmployeeID: "E-1", ClauseID: "meals-001", Amount: 1200, SubmittedAt: base},
		{EmployeeID: "E-1", ClauseID: "meals-001", Amount: 900, SubmittedAt: base.AddDate(0, 0, 5)},
		{EmployeeID: "E-1", ClauseID: "travel-002", Amount: 40000, SubmittedAt: base.AddDate(0, 0, 5)},
		{EmployeeID: "E-2", ClauseID: "meals-001", Amount: 700, SubmittedAt: base.AddDate(0, 0, 6)},
		{EmployeeID: "E-1", ClauseID: "meals-001", Amount: 500, SubmittedAt: base.AddDate(0, -1, 0)},
	}
	for _, sub := range subs {
		if err := store.Record(ctx, sub); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	count, err := store.CountSince(ctx, "E-1", "meals-001", base)
	if err != nil {
		t.Fatalf("CountSince() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestMemoryStoreValidation(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	tests := []struct {
		name string
		sub  *Submission
	}{
		{"nil submission", nil},
		{"missing employee", &Submission{ClauseID: "meals-001"}},
		{"missing clause", &Submission{EmployeeID: "E-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Record(ctx, tt.sub); err == nil {
				t.Error("Record() should fail")
			}
		})
	}
}

func TestMemoryStorePrune(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	old := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	store.Record(ctx, &Submission{EmployeeID: "E-1", ClauseID: "c", SubmittedAt: old})
	store.Record(ctx, &Submission{EmployeeID: "E-1", ClauseID: "c", SubmittedAt: recent})

	deleted, err := store.Prune(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 || store.Size() != 1 {
		t.Errorf("deleted = %d, remaining = %d, want 1/1", deleted, store.Size())
	}
}

func TestMemoryStoreEviction(t *testing.T) {
	store := NewMemoryStoreWithConfig(MemoryStoreConfig{MaxEntries: 2})
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		store.Record(ctx, &Submission{EmployeeID: "E-1", ClauseID: "c", SubmittedAt: time.Now()})
	}
	if store.Size() != 2 {
		t.Errorf("size = %d, want 2", store.Size())
	}
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2024, 8, 17, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   time.Time
	}{
		{"month", time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"quarter", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"year", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := periodStart(now, tt.period)
			if err != nil {
				t.Fatalf("periodStart() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("periodStart() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := periodStart(now, "fortnight"); err == nil {
		t.Error("unknown period should fail")
	}
}

func TestCounterCountsWithinPeriod(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
	store.Record(ctx, &Submission{EmployeeID: "E-1", ClauseID: "meals-001", SubmittedAt: now.AddDate(0, 0, -3)})
	store.Record(ctx, &Submission{EmployeeID: "E-1", ClauseID: "meals-001", SubmittedAt: now.AddDate(0, -2, 0)})

	counter := NewCounter(store, engine.FixedClock{Time: now})

	count, err := counter.Count("E-1", "meals-001", "month")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("month count = %d, want 1", count)
	}

	count, err = counter.Count("E-1", "meals-001", "year")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("year count = %d, want 2", count)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(t.TempDir() + "/history.db")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.Record(ctx, &Submission{EmployeeID: "E-1", ClauseID: "meals-001", Amount: 1200, SubmittedAt: base})
	store.Record(ctx, &Submission{EmployeeID: "E-1", ClauseID: "meals-001", Amount: 800, SubmittedAt: base.AddDate(0, 0, -40)})

	count, err := store.CountSince(ctx, "E-1", "meals-001", base.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("CountSince() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	deleted, err := store.Prune(ctx, base.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestSchedulerWithoutSchedule(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	s := NewScheduler(store, RetentionConfig{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should stay idle without a schedule")
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	s := NewScheduler(store, RetentionConfig{PruneSchedule: "not a cron"})
	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() should reject an invalid schedule")
		s.Stop()
	}
}
