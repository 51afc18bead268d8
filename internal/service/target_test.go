package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitedge/habitedge/internal/metrics"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/validation"
)

func TestCreateTarget(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.targets.Create("Make 500 free throws", model.TargetKindNumeric, TargetEdit{
		TargetValue: 500,
		Unit:        "shots",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.Completed)
	assert.Empty(t, created.Progress)

	// The collection survives a fresh service over the same database.
	reloaded := NewTargetService(repository.NewTargetRepository(env.db), env.notifier, metrics.New())
	got, err := reloaded.ByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Make 500 free throws", got.Title)
}

func TestCreateTargetValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.targets.Create("", model.TargetKindNumeric, TargetEdit{TargetValue: 10})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	_, err = env.targets.Create("No value", model.TargetKindNumeric, TargetEdit{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "targetValue", verr.Field)

	_, err = env.targets.Create("Bad kind", "weekly", TargetEdit{})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)

	// Boolean targets ignore any submitted target value.
	boolean, err := env.targets.Create("Make varsity", model.TargetKindBoolean, TargetEdit{TargetValue: 99})
	require.NoError(t, err)
	assert.Zero(t, boolean.TargetValue)

	targets, err := env.targets.Targets()
	require.NoError(t, err)
	assert.Len(t, targets, 1)
}

func TestLogProgress(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	env.targets.now = func() time.Time { return now }

	target, err := env.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100, Unit: "km"})
	require.NoError(t, err)

	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: 40})
	require.NoError(t, err)
	require.Len(t, target.Progress, 1)
	assert.Equal(t, 40.0, target.Total())
	assert.False(t, target.Completed)
	assert.Nil(t, target.CompletedAt)
	assert.NotZero(t, target.Progress[0].ID)
	assert.Equal(t, now, target.Progress[0].Timestamp)

	// Crossing the target value completes and stamps completedAt.
	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: 60})
	require.NoError(t, err)
	assert.True(t, target.Completed)
	require.NotNil(t, target.CompletedAt)
	assert.True(t, target.CompletedAt.Equal(now))
	require.Len(t, env.notifier.completed, 1)

	// Logging more keeps the original stamp and fires no second event.
	later := now.Add(48 * time.Hour)
	env.targets.now = func() time.Time { return later }
	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: 5})
	require.NoError(t, err)
	assert.Equal(t, 105.0, target.Total())
	assert.True(t, target.CompletedAt.Equal(now))
	assert.Len(t, env.notifier.completed, 1)
}

func TestLogProgressUpdatesEntryInPlace(t *testing.T) {
	env := newTestEnv(t)

	target, err := env.targets.Create("Watch 20 hours of film", model.TargetKindNumeric, TargetEdit{TargetValue: 20, Unit: "hours"})
	require.NoError(t, err)

	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: 3, Note: "scouting"})
	require.NoError(t, err)
	entryID := target.Progress[0].ID

	// Same entry ID corrects the stored entry instead of appending.
	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{ID: entryID, Value: 2.5, Note: "scouting, corrected"})
	require.NoError(t, err)
	require.Len(t, target.Progress, 1)
	assert.Equal(t, 2.5, target.Progress[0].Value)
	assert.Equal(t, "scouting, corrected", target.Progress[0].Note)
}

func TestLogProgressValidation(t *testing.T) {
	env := newTestEnv(t)

	target, err := env.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100})
	require.NoError(t, err)

	_, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: math.NaN()})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "value", verr.Field)

	// The rejected entry never reached the ledger.
	got, err := env.targets.ByID(target.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Progress)

	_, err = env.targets.LogProgress(999, model.ProgressEntry{Value: 1})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestProgressRequiresNumericKind(t *testing.T) {
	env := newTestEnv(t)

	boolean, err := env.targets.Create("Make varsity", model.TargetKindBoolean, TargetEdit{})
	require.NoError(t, err)
	numeric, err := env.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100})
	require.NoError(t, err)

	_, err = env.targets.LogProgress(boolean.ID, model.ProgressEntry{Value: 1})
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = env.targets.RemoveProgress(boolean.ID, 1)
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = env.targets.Complete(numeric.ID, "", time.Time{})
	assert.ErrorIs(t, err, ErrNotBoolean)

	_, err = env.targets.Reopen(numeric.ID)
	assert.ErrorIs(t, err, ErrNotBoolean)
}

func TestRemoveProgress(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	env.targets.now = func() time.Time { return now }

	target, err := env.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100})
	require.NoError(t, err)
	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: 60})
	require.NoError(t, err)
	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: 50})
	require.NoError(t, err)
	require.True(t, target.Completed)
	entryID := target.Progress[1].ID

	// Removing an unknown entry is a silent no-op.
	target, err = env.targets.RemoveProgress(target.ID, 424242)
	require.NoError(t, err)
	assert.Len(t, target.Progress, 2)

	// Dropping below the target value uncompletes, but the completion
	// stamp is history and stays.
	target, err = env.targets.RemoveProgress(target.ID, entryID)
	require.NoError(t, err)
	assert.Equal(t, 60.0, target.Total())
	assert.False(t, target.Completed)
	assert.NotNil(t, target.CompletedAt)

	got, err := env.targets.ByID(target.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestCompleteBooleanTarget(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	env.targets.now = func() time.Time { return now }

	target, err := env.targets.Create("Make varsity", model.TargetKindBoolean, TargetEdit{})
	require.NoError(t, err)
	_, err = env.targets.SetPriority(target.ID)
	require.NoError(t, err)

	target, err = env.targets.Complete(target.ID, "coach posted the roster", time.Time{})
	require.NoError(t, err)
	assert.True(t, target.Completed)
	require.NotNil(t, target.CompletedAt)
	assert.True(t, target.CompletedAt.Equal(now))
	assert.False(t, target.IsPriority, "completing frees the priority slot")
	require.Len(t, target.Progress, 1)
	assert.Equal(t, 1.0, target.Progress[0].Value)
	assert.Equal(t, "coach posted the roster", target.Progress[0].Note)
	require.Len(t, env.notifier.completed, 1)

	// Completing again rewrites the note but not the stamp, and stays
	// a single synthetic entry.
	later := now.Add(24 * time.Hour)
	env.targets.now = func() time.Time { return later }
	target, err = env.targets.Complete(target.ID, "updated note", later)
	require.NoError(t, err)
	require.Len(t, target.Progress, 1)
	assert.Equal(t, "updated note", target.Progress[0].Note)
	assert.True(t, target.CompletedAt.Equal(now))
	assert.Len(t, env.notifier.completed, 1)
}

func TestReopenKeepsCompletionStamp(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	env.targets.now = func() time.Time { return now }

	target, err := env.targets.Create("Make varsity", model.TargetKindBoolean, TargetEdit{})
	require.NoError(t, err)
	target, err = env.targets.Complete(target.ID, "", time.Time{})
	require.NoError(t, err)

	target, err = env.targets.Reopen(target.ID)
	require.NoError(t, err)
	assert.False(t, target.Completed)
	assert.Empty(t, target.Progress)
	require.NotNil(t, target.CompletedAt)
	assert.True(t, target.CompletedAt.Equal(now))
}

func TestSetPriorityIsExclusive(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100})
	require.NoError(t, err)
	second, err := env.targets.Create("Make varsity", model.TargetKindBoolean, TargetEdit{})
	require.NoError(t, err)

	targets, err := env.targets.SetPriority(first.ID)
	require.NoError(t, err)
	assert.True(t, findTarget(targets, first.ID).IsPriority)

	// Moving the flag clears it from the previous holder.
	targets, err = env.targets.SetPriority(second.ID)
	require.NoError(t, err)
	assert.False(t, findTarget(targets, first.ID).IsPriority)
	assert.True(t, findTarget(targets, second.ID).IsPriority)

	// Setting the current priority again toggles it off entirely.
	targets, err = env.targets.SetPriority(second.ID)
	require.NoError(t, err)
	for _, tgt := range targets {
		assert.False(t, tgt.IsPriority)
	}

	_, err = env.targets.SetPriority(999)
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestCompletionClearsPriority(t *testing.T) {
	env := newTestEnv(t)

	target, err := env.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100})
	require.NoError(t, err)
	_, err = env.targets.SetPriority(target.ID)
	require.NoError(t, err)

	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: 100})
	require.NoError(t, err)
	assert.True(t, target.Completed)
	assert.False(t, target.IsPriority)
}

func TestUpdateTarget(t *testing.T) {
	env := newTestEnv(t)

	target, err := env.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100, Unit: "km"})
	require.NoError(t, err)
	target, err = env.targets.LogProgress(target.ID, model.ProgressEntry{Value: 50})
	require.NoError(t, err)

	// A rejected edit leaves the stored target untouched.
	_, err = env.targets.Update(target.ID, TargetEdit{Title: "", TargetValue: 100})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	got, err := env.targets.ByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Run 100 km", got.Title)

	// Lowering the target value under the logged total completes the
	// target on the spot.
	updated, err := env.targets.Update(target.ID, TargetEdit{Title: "Run 40 km", TargetValue: 40, Unit: "km"})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletedAt)
	assert.Len(t, env.notifier.completed, 1)

	_, err = env.targets.Update(999, TargetEdit{Title: "x", TargetValue: 1})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestDeleteTarget(t *testing.T) {
	env := newTestEnv(t)

	target, err := env.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100})
	require.NoError(t, err)

	require.NoError(t, env.targets.Delete(target.ID))

	_, err = env.targets.ByID(target.ID)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.ErrorIs(t, env.targets.Delete(target.ID), ErrTargetNotFound)
}
