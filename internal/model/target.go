package model

import (
	"math"
	"time"
)

const (
	TargetKindNumeric = "numeric"
	TargetKindBoolean = "boolean"
)

// ProgressEntry is one contribution toward a numeric target, or the
// single synthetic completion entry of a boolean target.
type ProgressEntry struct {
	ID        int64     `json:"id"`
	Value     float64   `json:"value"`
	Note      string    `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Target struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Kind        string          `json:"kind"`
	TargetValue float64         `json:"targetValue,omitempty"` // required for numeric targets
	Unit        string          `json:"unit,omitempty"`
	Plan        string          `json:"plan,omitempty"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	IsPriority  bool            `json:"isPriority"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Progress    []ProgressEntry `json:"progress"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Total is the arithmetic sum of every progress entry. An empty ledger
// sums to 0.
func (t *Target) Total() float64 {
	var sum float64
	for _, e := range t.Progress {
		sum += e.Value
	}
	return sum
}

// UpsertProgress replaces the entry whose ID matches e.ID in place, or
// appends e when no entry matches.
func (t *Target) UpsertProgress(e ProgressEntry) {
	for i, cur := range t.Progress {
		if cur.ID == e.ID {
			t.Progress[i] = e
			return
		}
	}
	t.Progress = append(t.Progress, e)
}

// RemoveProgress drops the entry with the given ID. Unknown IDs leave
// the ledger unchanged.
func (t *Target) RemoveProgress(id int64) {
	for i, cur := range t.Progress {
		if cur.ID == id {
			t.Progress = append(t.Progress[:i], t.Progress[i+1:]...)
			return
		}
	}
}

// IsComplete derives completion from the ledger for numeric targets.
// The stored Completed flag is only authoritative for boolean targets;
// for numeric ones it is a cache that callers refresh via this method.
func (t *Target) IsComplete() bool {
	if t.Kind == TargetKindBoolean {
		return t.Completed
	}
	return t.TargetValue > 0 && t.Total() >= t.TargetValue
}

// PercentComplete is capped at 100 even when the total overshoots the
// target value. The stored total itself is never capped.
func (t *Target) PercentComplete() float64 {
	if t.Kind == TargetKindBoolean {
		if t.Completed {
			return 100
		}
		return 0
	}
	if t.TargetValue <= 0 {
		return 0
	}
	pct := 100 * t.Total() / t.TargetValue
	if pct > 100 {
		return 100
	}
	return pct
}

// DaysRemaining counts 24h periods until the deadline, rounded up.
// Zero means due today, negative means the deadline has passed. ok is
// false when the target has no deadline.
func (t *Target) DaysRemaining(now time.Time) (days int, ok bool) {
	if t.Deadline == nil {
		return 0, false
	}
	return int(math.Ceil(t.Deadline.Sub(now).Hours() / 24)), true
}
