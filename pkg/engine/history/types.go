package history

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/ruler/pkg/engine"
)

// Submission is one recorded expense submission.
type Submission struct {
	// EmployeeID identifies the submitting employee.
	EmployeeID string `json:"employee_id"`

	// ClauseID is the rule the submission was evaluated under.
	ClauseID string `json:"clause_id"`

	// Amount is the submitted amount, kept for reporting.
	Amount float64 `json:"amount"`

	// SubmittedAt is when the submission was recorded.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Store persists submissions and answers frequency queries.
type Store interface {
	// Record appends one submission.
	Record(ctx context.Context, sub *Submission) error

	// CountSince returns the number of submissions by employeeID under
	// clauseID at or after since.
	CountSince(ctx context.Context, employeeID, clauseID string, since time.Time) (int, error)

	// Prune removes submissions older than the cutoff and returns how
	// many were deleted.
	Prune(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Counter adapts a Store to the engine's frequency interface, translating
// period names into calendar windows.
type Counter struct {
	store Store
	clock engine.Clock
}

// NewCounter creates a frequency counter over a store. A nil clock uses
// the system clock.
func NewCounter(store Store, clock engine.Clock) *Counter {
	if clock == nil {
		clock = engine.SystemClock()
	}
	return &Counter{store: store, clock: clock}
}

// Count returns the number of submissions by the employee under the
// clause within the current calendar period.
func (c *Counter) Count(employeeID, clauseID, period string) (int, error) {
	since, err := periodStart(c.clock.Now(), period)
	if err != nil {
		return 0, err
	}
	return c.store.CountSince(context.Background(), employeeID, clauseID, since)
}

// periodStart returns the start of the calendar period containing now.
func periodStart(now time.Time, period string) (time.Time, error) {
	switch period {
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case "quarter":
		quarterMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
		return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, now.Location()), nil
	case "year":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("unknown frequency period %q", period)
	}
}

func validateSubmission(sub *Submission) error {
	if sub == nil {
		return fmt.Errorf("submission cannot be nil")
	}
	if sub.EmployeeID == "" {
		return fmt.Errorf("employee id cannot be empty")
	}
	if sub.ClauseID == "" {
		return fmt.Errorf("clause id cannot be empty")
	}
	return nil
}
