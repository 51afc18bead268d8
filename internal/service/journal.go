package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/habitedge/habitedge/internal/metrics"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/notify"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/validation"
)

var (
	ErrEntryNotFound = errors.New("journal entry not found")
)

// streakMilestones are the day counts worth celebrating.
var streakMilestones = []int{7, 30, 100}

// JournalService owns the journal collection, persisted whole like the
// target collection.
type JournalService struct {
	mu       sync.Mutex
	repo     repository.JournalRepository
	profiles *ProfileService
	notifier notify.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewJournalService(repo repository.JournalRepository, profiles *ProfileService, notifier notify.Notifier, m *metrics.Metrics) *JournalService {
	return &JournalService{
		repo:     repo,
		profiles: profiles,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// EntryFilter narrows a listing. Zero values mean "everything".
type EntryFilter struct {
	Type string
	From time.Time
	To   time.Time
}

// Entries lists matching entries newest first.
func (s *JournalService) Entries(filter EntryFilter) ([]*model.JournalEntry, error) {
	entries, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	out := make([]*model.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *JournalService) ByID(id int64) (*model.JournalEntry, error) {
	entries, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	entry := findEntry(entries, id)
	if entry == nil {
		return nil, ErrEntryNotFound
	}

	return entry, nil
}

func (s *JournalService) Create(entry *model.JournalEntry) (*model.JournalEntry, error) {
	if entry.Date.IsZero() {
		entry.Date = s.now()
	}
	if err := validation.ValidateJournalEntry(entry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	now := s.now()
	loc := s.profiles.Location()
	before := computeStreaks(entries, now, loc).CurrentStreak

	entry.ID = model.NewID()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	entries = append(entries, entry)

	if err := s.repo.SaveAll(entries); err != nil {
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	s.metrics.RecordEntryLogged(entry.Type)
	s.notifier.EntryLogged(entry)

	// Celebrate only when this entry extends the streak onto a new day.
	after := computeStreaks(entries, now, loc).CurrentStreak
	if after != before && isMilestone(after) {
		s.notifier.StreakMilestone(after)
	}

	return entry, nil
}

func (s *JournalService) Update(entry *model.JournalEntry) (*model.JournalEntry, error) {
	if err := validation.ValidateJournalEntry(entry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	stored := findEntry(entries, entry.ID)
	if stored == nil {
		return nil, ErrEntryNotFound
	}

	entry.CreatedAt = stored.CreatedAt
	entry.UpdatedAt = s.now()
	*stored = *entry

	if err := s.repo.SaveAll(entries); err != nil {
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	return stored, nil
}

func (s *JournalService) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.repo.All()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return ErrEntryNotFound
	}

	if err := s.repo.SaveAll(kept); err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}

	return nil
}

// Replace swaps the whole collection. Used by import; callers are
// expected to have validated every entry first.
func (s *JournalService) Replace(entries []*model.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveAll(entries); err != nil {
		return fmt.Errorf("failed to save journal: %w", err)
	}
	return nil
}

func isMilestone(days int) bool {
	for _, m := range streakMilestones {
		if days == m {
			return true
		}
	}
	return false
}

func findEntry(entries []*model.JournalEntry, id int64) *model.JournalEntry {
	for _, e := range entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}
