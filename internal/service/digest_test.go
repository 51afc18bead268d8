package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
)

func newDigestEnv(t *testing.T) (*DigestService, repository.SettingsRepository, *testEnv) {
	t.Helper()

	env := newTestEnv(t)
	settings := repository.NewSettingsRepository(env.db)
	emails := NewEmailService("", "noreply@habitedge.local", "http://localhost:8080", "HabitEdge", true)
	svc := NewDigestService(env.stats, env.users, env.profiles, emails, settings)
	return svc, settings, env
}

func seedAccount(t *testing.T, env *testEnv) {
	t.Helper()

	require.NoError(t, env.users.Create(&model.User{
		ID:        "user-1",
		Email:     "athlete@example.com",
		CreatedAt: time.Now(),
	}))
	profileRepo := repository.NewProfileRepository(env.db)
	require.NoError(t, profileRepo.Create(&model.Profile{UserID: "user-1", Name: "Jordan"}))
}

func TestDigestSendNow(t *testing.T) {
	svc, settings, env := newDigestEnv(t)
	seedAccount(t, env)

	now := time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	env.stats.now = func() time.Time { return now }

	_, err := env.journal.Create(&model.JournalEntry{Type: model.EntryTypePractice, Title: "practice", Date: now})
	require.NoError(t, err)

	require.NoError(t, svc.SendNow())

	// The send is recorded against the ISO week so the scheduler will
	// not repeat it.
	last, err := settings.Get(digestSentSlot)
	require.NoError(t, err)
	assert.Equal(t, "2026-W15", last)
}

func TestDigestSendNowWithoutAccount(t *testing.T) {
	svc, _, _ := newDigestEnv(t)
	assert.Error(t, svc.SendNow())
}

func TestReminderSendNow(t *testing.T) {
	svc, settings, env := newDigestEnv(t)
	seedAccount(t, env)

	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	env.stats.now = func() time.Time { return now }

	// Nothing due: no mail goes out and no send is recorded.
	n, err := svc.SendRemindersNow()
	require.NoError(t, err)
	assert.Zero(t, n)
	last, err := settings.Get(reminderSentSlot)
	require.NoError(t, err)
	assert.Empty(t, last)

	deadline := now.AddDate(0, 0, 2)
	_, err = env.targets.Create("Free throws", model.TargetKindBoolean, TargetEdit{Deadline: &deadline})
	require.NoError(t, err)

	n, err = svc.SendRemindersNow()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	last, err = settings.Get(reminderSentSlot)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-10", last)
}

func TestReminderDailyGate(t *testing.T) {
	svc, settings, env := newDigestEnv(t)
	seedAccount(t, env)

	deadline := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC)
	_, err := env.targets.Create("Free throws", model.TargetKindBoolean, TargetEdit{Deadline: &deadline})
	require.NoError(t, err)

	setNow := func(at time.Time) {
		svc.now = func() time.Time { return at }
		env.stats.now = func() time.Time { return at }
	}

	// Before the morning hour nothing goes out.
	setNow(time.Date(2026, 4, 10, 7, 0, 0, 0, time.UTC))
	svc.maybeRemind()
	last, err := settings.Get(reminderSentSlot)
	require.NoError(t, err)
	assert.Empty(t, last)

	// The first morning tick sends and records the day.
	setNow(time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC))
	svc.maybeRemind()
	last, err = settings.Get(reminderSentSlot)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-10", last)

	// The next day rolls the key forward.
	setNow(time.Date(2026, 4, 11, 9, 0, 0, 0, time.UTC))
	svc.maybeRemind()
	last, err = settings.Get(reminderSentSlot)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-11", last)
}

func TestDigestScheduleGate(t *testing.T) {
	svc, settings, env := newDigestEnv(t)
	seedAccount(t, env)

	setNow := func(at time.Time) {
		svc.now = func() time.Time { return at }
		env.stats.now = func() time.Time { return at }
	}

	// Saturday, and Sunday before the evening: nothing goes out.
	setNow(time.Date(2026, 4, 11, 19, 0, 0, 0, time.UTC))
	svc.maybeSend()
	last, err := settings.Get(digestSentSlot)
	require.NoError(t, err)
	assert.Empty(t, last)

	setNow(time.Date(2026, 4, 12, 17, 0, 0, 0, time.UTC))
	svc.maybeSend()
	last, err = settings.Get(digestSentSlot)
	require.NoError(t, err)
	assert.Empty(t, last)

	// Sunday evening sends.
	setNow(time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC))
	svc.maybeSend()
	last, err = settings.Get(digestSentSlot)
	require.NoError(t, err)
	assert.Equal(t, "2026-W15", last)

	// The following Sunday rolls the week key forward.
	setNow(time.Date(2026, 4, 19, 19, 0, 0, 0, time.UTC))
	svc.maybeSend()
	last, err = settings.Get(digestSentSlot)
	require.NoError(t, err)
	assert.Equal(t, "2026-W16", last)
}
