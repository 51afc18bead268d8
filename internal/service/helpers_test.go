package service

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/habitedge/habitedge/internal/db"
	"github.com/habitedge/habitedge/internal/metrics"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
)

// newTestDB opens a throwaway sqlite database with all migrations
// applied. Closed automatically when the test finishes.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

// recordingNotifier captures fired events for assertions.
type recordingNotifier struct {
	completed  []*model.Target
	logged     []*model.JournalEntry
	milestones []int
}

func (r *recordingNotifier) TargetCompleted(tgt *model.Target) {
	r.completed = append(r.completed, tgt)
}

func (r *recordingNotifier) EntryLogged(e *model.JournalEntry) {
	r.logged = append(r.logged, e)
}

func (r *recordingNotifier) StreakMilestone(days int) {
	r.milestones = append(r.milestones, days)
}

// testEnv wires the collection services over one test database, the
// same way app.New does for the server.
type testEnv struct {
	db       *sqlx.DB
	notifier *recordingNotifier
	users    repository.UserRepository
	profiles *ProfileService
	targets  *TargetService
	journal  *JournalService
	stats    *StatsService
	export   *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := newTestDB(t)
	notifier := &recordingNotifier{}
	m := metrics.New()

	userRepo := repository.NewUserRepository(database)
	profileRepo := repository.NewProfileRepository(database)
	targetRepo := repository.NewTargetRepository(database)
	journalRepo := repository.NewJournalRepository(database)

	profiles := NewProfileService(profileRepo, userRepo)
	targets := NewTargetService(targetRepo, notifier, m)
	journal := NewJournalService(journalRepo, profiles, notifier, m)
	stats := NewStatsService(targetRepo, journalRepo, profiles)
	export := NewExportService(targetRepo, journalRepo, targets, journal, profiles)

	return &testEnv{
		db:       database,
		notifier: notifier,
		users:    userRepo,
		profiles: profiles,
		targets:  targets,
		journal:  journal,
		stats:    stats,
		export:   export,
	}
}
