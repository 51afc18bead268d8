package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/habitedge/habitedge/internal/metrics"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/notify"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/validation"
)

var (
	ErrTargetNotFound = errors.New("target not found")
	ErrNotNumeric     = errors.New("progress entries require a numeric target")
	ErrNotBoolean     = errors.New("completion toggle requires a boolean target")
)

// TargetService owns the target collection. The collection is loaded
// whole, mutated in memory and written back whole, so every mutation
// runs under one lock to keep read-modify-write cycles serialized.
type TargetService struct {
	mu       sync.Mutex
	repo     repository.TargetRepository
	notifier notify.Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewTargetService(repo repository.TargetRepository, notifier notify.Notifier, m *metrics.Metrics) *TargetService {
	return &TargetService{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		now:      time.Now,
	}
}

// TargetEdit carries the fields a form may change. Kind is fixed at
// creation; progress, priority and completion have their own paths.
type TargetEdit struct {
	Title       string
	TargetValue float64
	Unit        string
	Plan        string
	Deadline    *time.Time
}

func (s *TargetService) Targets() ([]*model.Target, error) {
	return s.repo.All()
}

func (s *TargetService) ByID(id int64) (*model.Target, error) {
	targets, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	target := findTarget(targets, id)
	if target == nil {
		return nil, ErrTargetNotFound
	}

	return target, nil
}

func (s *TargetService) Create(title, kind string, edit TargetEdit) (*model.Target, error) {
	now := s.now()
	target := &model.Target{
		ID:          model.NewID(),
		Title:       title,
		Kind:        kind,
		TargetValue: edit.TargetValue,
		Unit:        edit.Unit,
		Plan:        edit.Plan,
		Deadline:    edit.Deadline,
		Progress:    []model.ProgressEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if kind == model.TargetKindBoolean {
		// boolean targets have no target value, completion is a flag
		target.TargetValue = 0
	}

	if err := validation.ValidateTarget(target); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	targets = append(targets, target)
	if err := s.repo.SaveAll(targets); err != nil {
		return nil, fmt.Errorf("failed to save targets: %w", err)
	}

	return target, nil
}

func (s *TargetService) Update(id int64, edit TargetEdit) (*model.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	target := findTarget(targets, id)
	if target == nil {
		return nil, ErrTargetNotFound
	}

	// Validate against a copy so a rejected edit leaves the stored
	// collection untouched.
	edited := *target
	edited.Title = edit.Title
	edited.Unit = edit.Unit
	edited.Plan = edit.Plan
	edited.Deadline = edit.Deadline
	if target.Kind == model.TargetKindNumeric {
		edited.TargetValue = edit.TargetValue
	}

	if err := validation.ValidateTarget(&edited); err != nil {
		return nil, err
	}

	*target = edited
	// Lowering the target value can complete the target on the spot.
	justCompleted := s.refreshCompletion(target)
	target.UpdatedAt = s.now()

	if err := s.repo.SaveAll(targets); err != nil {
		return nil, fmt.Errorf("failed to save targets: %w", err)
	}

	s.notifyCompleted(target, justCompleted)
	return target, nil
}

func (s *TargetService) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.repo.All()
	if err != nil {
		return err
	}

	kept := targets[:0]
	for _, t := range targets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(targets) {
		return ErrTargetNotFound
	}

	if err := s.repo.SaveAll(kept); err != nil {
		return fmt.Errorf("failed to save targets: %w", err)
	}

	return nil
}

// LogProgress upserts one progress entry on a numeric target: an
// entry with a known ID replaces the stored one, an entry with no ID
// is appended. Completion is recomputed from the new total.
func (s *TargetService) LogProgress(targetID int64, entry model.ProgressEntry) (*model.Target, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if err := validation.ValidateProgressEntry(entry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	target := findTarget(targets, targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}
	if target.Kind != model.TargetKindNumeric {
		return nil, ErrNotNumeric
	}

	if entry.ID == 0 {
		entry.ID = model.NewID()
	}
	target.UpsertProgress(entry)
	justCompleted := s.refreshCompletion(target)
	target.UpdatedAt = s.now()

	if err := s.repo.SaveAll(targets); err != nil {
		return nil, fmt.Errorf("failed to save targets: %w", err)
	}

	s.notifyCompleted(target, justCompleted)
	return target, nil
}

// RemoveProgress deletes one progress entry. An unknown entry ID is a
// silent no-op; the collection is written back either way.
func (s *TargetService) RemoveProgress(targetID, entryID int64) (*model.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	target := findTarget(targets, targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}
	if target.Kind != model.TargetKindNumeric {
		return nil, ErrNotNumeric
	}

	target.RemoveProgress(entryID)
	s.refreshCompletion(target)
	target.UpdatedAt = s.now()

	if err := s.repo.SaveAll(targets); err != nil {
		return nil, fmt.Errorf("failed to save targets: %w", err)
	}

	return target, nil
}

// Complete marks a boolean target done. The ledger is replaced with a
// single synthetic entry of value 1 recording the completion, and
// completedAt is stamped the first time only.
func (s *TargetService) Complete(targetID int64, note string, timestamp time.Time) (*model.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	target := findTarget(targets, targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}
	if target.Kind != model.TargetKindBoolean {
		return nil, ErrNotBoolean
	}

	now := s.now()
	if timestamp.IsZero() {
		timestamp = now
	}

	wasCompleted := target.Completed
	target.Progress = []model.ProgressEntry{{
		ID:        model.NewID(),
		Value:     1,
		Note:      note,
		Timestamp: timestamp,
	}}
	target.Completed = true
	if target.CompletedAt == nil {
		target.CompletedAt = &now
	}
	if target.IsPriority {
		target.IsPriority = false
	}
	target.UpdatedAt = now

	if err := s.repo.SaveAll(targets); err != nil {
		return nil, fmt.Errorf("failed to save targets: %w", err)
	}

	s.notifyCompleted(target, !wasCompleted)
	return target, nil
}

// Reopen clears a boolean target's completion flag and its synthetic
// ledger entry. The original completedAt stamp is kept as history.
func (s *TargetService) Reopen(targetID int64) (*model.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	target := findTarget(targets, targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}
	if target.Kind != model.TargetKindBoolean {
		return nil, ErrNotBoolean
	}

	target.Completed = false
	target.Progress = []model.ProgressEntry{}
	target.UpdatedAt = s.now()

	if err := s.repo.SaveAll(targets); err != nil {
		return nil, fmt.Errorf("failed to save targets: %w", err)
	}

	return target, nil
}

// SetPriority toggles the priority flag on one target and clears it on
// every other, so at most one target is ever the priority. This is the
// only place isPriority changes outside of completion.
func (s *TargetService) SetPriority(targetID int64) ([]*model.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.repo.All()
	if err != nil {
		return nil, err
	}

	target := findTarget(targets, targetID)
	if target == nil {
		return nil, ErrTargetNotFound
	}

	next := !target.IsPriority
	for _, t := range targets {
		t.IsPriority = false
	}
	target.IsPriority = next
	target.UpdatedAt = s.now()

	if err := s.repo.SaveAll(targets); err != nil {
		return nil, fmt.Errorf("failed to save targets: %w", err)
	}

	return targets, nil
}

// Replace swaps the whole collection. Used by import; callers are
// expected to have validated every target first.
func (s *TargetService) Replace(targets []*model.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.SaveAll(targets); err != nil {
		return fmt.Errorf("failed to save targets: %w", err)
	}
	return nil
}

// refreshCompletion recomputes the cached completed flag of a numeric
// target from its ledger. completedAt is stamped once and never
// changed after; completing a priority target frees the priority slot.
func (s *TargetService) refreshCompletion(target *model.Target) (justCompleted bool) {
	if target.Kind != model.TargetKindNumeric {
		return false
	}

	was := target.Completed
	target.Completed = target.IsComplete()

	if target.Completed && target.CompletedAt == nil {
		now := s.now()
		target.CompletedAt = &now
	}
	if target.Completed && !was {
		if target.IsPriority {
			target.IsPriority = false
		}
		return true
	}

	return false
}

func (s *TargetService) notifyCompleted(target *model.Target, justCompleted bool) {
	if !justCompleted {
		return
	}
	s.metrics.RecordTargetCompleted(target.Kind)
	s.notifier.TargetCompleted(target)
}

func findTarget(targets []*model.Target, id int64) *model.Target {
	for _, t := range targets {
		if t.ID == id {
			return t
		}
	}
	return nil
}
