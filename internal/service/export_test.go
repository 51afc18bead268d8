package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/validation"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestEnv(t)

	target, err := src.targets.Create("Run 100 km", model.TargetKindNumeric, TargetEdit{TargetValue: 100, Unit: "km"})
	require.NoError(t, err)
	target, err = src.targets.LogProgress(target.ID, model.ProgressEntry{Value: 40, Note: "long run"})
	require.NoError(t, err)

	entry, err := src.journal.Create(&model.JournalEntry{
		Type:  model.EntryTypeGame,
		Title: "home opener",
		Date:  time.Date(2026, 4, 5, 19, 0, 0, 0, time.UTC),
		GameDetails: &model.GameDetails{
			Opponent: "Eastside",
			Result:   "win",
			Score:    "68-61",
		},
	})
	require.NoError(t, err)

	export, err := src.export.Export("nobody")
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, export.Version)
	data, err := json.Marshal(export)
	require.NoError(t, err)

	dst := newTestEnv(t)
	summary, err := dst.export.Import("nobody", data)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Targets)
	assert.Equal(t, 1, summary.Entries)

	gotTarget, err := dst.targets.ByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Run 100 km", gotTarget.Title)
	require.Len(t, gotTarget.Progress, 1)
	assert.Equal(t, 40.0, gotTarget.Progress[0].Value)
	assert.Equal(t, "long run", gotTarget.Progress[0].Note)

	gotEntry, err := dst.journal.ByID(entry.ID)
	require.NoError(t, err)
	require.NotNil(t, gotEntry.GameDetails)
	assert.Equal(t, "Eastside", gotEntry.GameDetails.Opponent)
}

func TestImportReplacesCollections(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.targets.Create("old target", model.TargetKindBoolean, TargetEdit{})
	require.NoError(t, err)
	_, err = env.journal.Create(&model.JournalEntry{Type: model.EntryTypePractice, Title: "old entry", Date: time.Now()})
	require.NoError(t, err)

	data, err := json.Marshal(&Export{
		Version: ExportVersion,
		Targets: []*model.Target{
			{Title: "imported target", Kind: model.TargetKindNumeric, TargetValue: 10},
		},
	})
	require.NoError(t, err)

	summary, err := env.export.Import("nobody", data)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Targets)
	assert.Equal(t, 0, summary.Entries)

	// The import is a replace, not a merge. The absent entries slice
	// empties the journal.
	targets, err := env.targets.Targets()
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "imported target", targets[0].Title)
	assert.NotZero(t, targets[0].ID, "missing IDs are assigned on import")

	entries, err := env.journal.Entries(EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImportRejectsInvalidRecordWholesale(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.targets.Create("keep me", model.TargetKindBoolean, TargetEdit{})
	require.NoError(t, err)

	data, err := json.Marshal(&Export{
		Version: ExportVersion,
		Targets: []*model.Target{
			{Title: "fine", Kind: model.TargetKindNumeric, TargetValue: 10},
			{Title: "", Kind: model.TargetKindNumeric, TargetValue: 10},
		},
	})
	require.NoError(t, err)

	_, err = env.export.Import("nobody", data)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	// Nothing was written, including the valid record.
	targets, err := env.targets.Targets()
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "keep me", targets[0].Title)
}

func TestImportValidatesProgressEntries(t *testing.T) {
	env := newTestEnv(t)

	data, err := json.Marshal(&Export{
		Version: ExportVersion,
		Targets: []*model.Target{
			{
				Title:       "Run 100 km",
				Kind:        model.TargetKindNumeric,
				TargetValue: 100,
				Progress:    []model.ProgressEntry{{ID: 1, Value: 10}}, // no timestamp
			},
		},
	})
	require.NoError(t, err)

	_, err = env.export.Import("nobody", data)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "timestamp", verr.Field)
}

func TestImportUnsupportedVersion(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.export.Import("nobody", []byte(`{"version":2,"targets":[],"entries":[]}`))
	assert.ErrorIs(t, err, ErrUnsupportedExport)
}

func TestImportMalformedPayload(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.export.Import("nobody", []byte("definitely not json"))
	assert.ErrorIs(t, err, ErrMalformedExport)

	_, err = env.export.Import("nobody", []byte(`{"version":1,"targets":[null],"entries":[]}`))
	assert.ErrorIs(t, err, ErrMalformedExport)
}

func TestImportRestoresProfile(t *testing.T) {
	env := newTestEnv(t)

	userID := "user-1"
	require.NoError(t, env.users.Create(&model.User{ID: userID, Email: "athlete@example.com", CreatedAt: time.Now()}))
	profileRepo := repository.NewProfileRepository(env.db)
	require.NoError(t, profileRepo.Create(&model.Profile{UserID: userID}))

	data, err := json.Marshal(&Export{
		Version: ExportVersion,
		Profile: &model.Profile{Name: "Jordan", Sport: "basketball", Position: "guard"},
	})
	require.NoError(t, err)

	_, err = env.export.Import(userID, data)
	require.NoError(t, err)

	profile, err := env.profiles.ByUserID(userID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan", profile.Name)
	assert.Equal(t, "basketball", profile.Sport)
}
