package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/validation"
)

func TestCreateEntry(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 4, 10, 21, 30, 0, 0, time.UTC)
	env.journal.now = func() time.Time { return now }

	entry, err := env.journal.Create(&model.JournalEntry{
		Type:  model.EntryTypePractice,
		Title: "Morning shootaround",
		Metrics: map[string]float64{
			"energyLevel": 7,
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, now, entry.CreatedAt)
	assert.Equal(t, now, entry.UpdatedAt)
	// A missing date means "right now".
	assert.Equal(t, now, entry.Date)

	require.Len(t, env.notifier.logged, 1)
	assert.Equal(t, entry.ID, env.notifier.logged[0].ID)
}

func TestCreateEntryValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.journal.Create(&model.JournalEntry{Type: "meditation", Title: "Om"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)

	// Game details belong to game entries only.
	_, err = env.journal.Create(&model.JournalEntry{
		Type:        model.EntryTypePractice,
		Title:       "Practice",
		GameDetails: &model.GameDetails{Opponent: "Eastside"},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "gameDetails", verr.Field)

	entries, err := env.journal.Entries(EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntriesFilter(t *testing.T) {
	env := newTestEnv(t)

	mk := func(entryType, title string, date time.Time) {
		_, err := env.journal.Create(&model.JournalEntry{Type: entryType, Title: title, Date: date})
		require.NoError(t, err)
	}
	mk(model.EntryTypePractice, "early season practice", time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC))
	mk(model.EntryTypeGame, "home opener", time.Date(2026, 4, 5, 19, 0, 0, 0, time.UTC))
	mk(model.EntryTypeWorkout, "lift day", time.Date(2026, 4, 9, 7, 0, 0, 0, time.UTC))

	// Unfiltered listing is newest first.
	all, err := env.journal.Entries(EntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "lift day", all[0].Title)
	assert.Equal(t, "early season practice", all[2].Title)

	games, err := env.journal.Entries(EntryFilter{Type: model.EntryTypeGame})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "home opener", games[0].Title)

	recent, err := env.journal.Entries(EntryFilter{From: time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	early, err := env.journal.Entries(EntryFilter{To: time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.Len(t, early, 1)
	assert.Equal(t, "early season practice", early[0].Title)
}

func TestUpdateEntry(t *testing.T) {
	env := newTestEnv(t)
	created := time.Date(2026, 4, 10, 21, 30, 0, 0, time.UTC)
	env.journal.now = func() time.Time { return created }

	entry, err := env.journal.Create(&model.JournalEntry{
		Type:  model.EntryTypeGame,
		Title: "home opener",
		Date:  created,
	})
	require.NoError(t, err)

	later := created.Add(2 * time.Hour)
	env.journal.now = func() time.Time { return later }

	entry.Title = "home opener, W 68-61"
	entry.GameDetails = &model.GameDetails{Opponent: "Eastside", Result: "win", Score: "68-61"}
	updated, err := env.journal.Update(entry)
	require.NoError(t, err)
	assert.Equal(t, "home opener, W 68-61", updated.Title)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)

	_, err = env.journal.Update(&model.JournalEntry{ID: 999, Type: model.EntryTypeGame, Title: "ghost", Date: created})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestDeleteEntry(t *testing.T) {
	env := newTestEnv(t)

	entry, err := env.journal.Create(&model.JournalEntry{
		Type:  model.EntryTypeWorkout,
		Title: "lift day",
		Date:  time.Date(2026, 4, 9, 7, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, env.journal.Delete(entry.ID))
	_, err = env.journal.ByID(entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, env.journal.Delete(entry.ID), ErrEntryNotFound)
}

func TestStreakMilestoneFiresOnSeventhDay(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 4, 10, 20, 0, 0, 0, time.UTC)
	env.journal.now = func() time.Time { return now }

	// Six consecutive days already journaled, today still open.
	seed := make([]*model.JournalEntry, 0, 6)
	for i := 1; i <= 6; i++ {
		seed = append(seed, &model.JournalEntry{
			ID:    model.NewID(),
			Type:  model.EntryTypePractice,
			Title: "practice",
			Date:  now.AddDate(0, 0, -i),
		})
	}
	require.NoError(t, env.journal.Replace(seed))

	_, err := env.journal.Create(&model.JournalEntry{Type: model.EntryTypePractice, Title: "day seven"})
	require.NoError(t, err)
	assert.Equal(t, []int{7}, env.notifier.milestones)

	// A second entry on the same day extends nothing and stays quiet.
	_, err = env.journal.Create(&model.JournalEntry{Type: model.EntryTypeFilm, Title: "evening film"})
	require.NoError(t, err)
	assert.Equal(t, []int{7}, env.notifier.milestones)
	assert.Len(t, env.notifier.logged, 2)
}

func TestNoMilestoneOffTheLadder(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 4, 10, 20, 0, 0, 0, time.UTC)
	env.journal.now = func() time.Time { return now }

	// Three prior days; the new entry makes four, which is not a
	// celebrated count.
	seed := make([]*model.JournalEntry, 0, 3)
	for i := 1; i <= 3; i++ {
		seed = append(seed, &model.JournalEntry{
			ID:    model.NewID(),
			Type:  model.EntryTypePractice,
			Title: "practice",
			Date:  now.AddDate(0, 0, -i),
		})
	}
	require.NoError(t, env.journal.Replace(seed))

	_, err := env.journal.Create(&model.JournalEntry{Type: model.EntryTypePractice, Title: "day four"})
	require.NoError(t, err)
	assert.Empty(t, env.notifier.milestones)
}
