package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/validation"
)

// ExportVersion is bumped when the export format changes shape.
const ExportVersion = 1

var (
	ErrUnsupportedExport = errors.New("unsupported export version")
	ErrMalformedExport   = errors.New("malformed export file")
)

// Export is the full portable snapshot of an athlete's data. It
// round-trips through Import on another install.
type Export struct {
	Version    int                   `json:"version"`
	ExportedAt time.Time             `json:"exportedAt"`
	Profile    *model.Profile        `json:"profile,omitempty"`
	Targets    []*model.Target       `json:"targets"`
	Entries    []*model.JournalEntry `json:"entries"`
}

// ImportSummary reports what an import replaced.
type ImportSummary struct {
	Targets int `json:"targets"`
	Entries int `json:"entries"`
}

type ExportService struct {
	targetRepo     repository.TargetRepository
	journalRepo    repository.JournalRepository
	targetService  *TargetService
	journalService *JournalService
	profileService *ProfileService
	now            func() time.Time
}

func NewExportService(
	targetRepo repository.TargetRepository,
	journalRepo repository.JournalRepository,
	targetService *TargetService,
	journalService *JournalService,
	profileService *ProfileService,
) *ExportService {
	return &ExportService{
		targetRepo:     targetRepo,
		journalRepo:    journalRepo,
		targetService:  targetService,
		journalService: journalService,
		profileService: profileService,
		now:            time.Now,
	}
}

func (s *ExportService) Export(userID string) (*Export, error) {
	targets, err := s.targetRepo.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}

	entries, err := s.journalRepo.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}

	export := &Export{
		Version:    ExportVersion,
		ExportedAt: s.now(),
		Targets:    targets,
		Entries:    entries,
	}

	profile, err := s.profileService.ByUserID(userID)
	if err == nil {
		export.Profile = profile
	}

	return export, nil
}

// Import replaces the target and journal collections with the
// snapshot. The whole payload is validated up front; an invalid
// record anywhere rejects the import without touching stored data.
func (s *ExportService) Import(userID string, data []byte) (*ImportSummary, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		slog.Warn("import: malformed payload", "error", err)
		return nil, ErrMalformedExport
	}

	if export.Version != ExportVersion {
		return nil, fmt.Errorf("version %d: %w", export.Version, ErrUnsupportedExport)
	}

	for i, t := range export.Targets {
		if t == nil {
			return nil, fmt.Errorf("target %d: %w", i, ErrMalformedExport)
		}
		if err := validation.ValidateTarget(t); err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Title, err)
		}
		for _, p := range t.Progress {
			if err := validation.ValidateProgressEntry(p); err != nil {
				return nil, fmt.Errorf("target %q: %w", t.Title, err)
			}
		}
		if t.ID == 0 {
			t.ID = model.NewID()
		}
	}

	for i, e := range export.Entries {
		if e == nil {
			return nil, fmt.Errorf("entry %d: %w", i, ErrMalformedExport)
		}
		if err := validation.ValidateJournalEntry(e); err != nil {
			return nil, fmt.Errorf("entry %q: %w", e.Title, err)
		}
		if e.ID == 0 {
			e.ID = model.NewID()
		}
	}

	if export.Targets == nil {
		export.Targets = []*model.Target{}
	}
	if export.Entries == nil {
		export.Entries = []*model.JournalEntry{}
	}

	if err := s.targetService.Replace(export.Targets); err != nil {
		return nil, err
	}
	if err := s.journalService.Replace(export.Entries); err != nil {
		return nil, err
	}

	if export.Profile != nil {
		if _, err := s.profileService.Update(userID, export.Profile); err != nil {
			slog.Warn("import: failed to restore profile", "error", err)
		}
	}

	slog.Info("import complete", "targets", len(export.Targets), "entries", len(export.Entries))
	return &ImportSummary{
		Targets: len(export.Targets),
		Entries: len(export.Entries),
	}, nil
}
