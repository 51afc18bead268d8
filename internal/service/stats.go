package service

import (
	"sort"
	"time"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
)

// StatsService computes dashboard numbers. Everything here is derived
// fresh from the collections on each call; nothing is persisted.
type StatsService struct {
	targets  repository.TargetRepository
	journal  repository.JournalRepository
	profiles *ProfileService
	now      func() time.Time
}

func NewStatsService(targets repository.TargetRepository, journal repository.JournalRepository, profiles *ProfileService) *StatsService {
	return &StatsService{
		targets:  targets,
		journal:  journal,
		profiles: profiles,
		now:      time.Now,
	}
}

// DeadlineSummary is one upcoming (or overdue) target deadline.
type DeadlineSummary struct {
	TargetID        int64   `json:"targetId"`
	Title           string  `json:"title"`
	DaysRemaining   int     `json:"daysRemaining"`
	PercentComplete float64 `json:"percentComplete"`
}

// deadlineSummary flattens a target's deadline state for the dashboard
// and the emails. ok is false when the target has no deadline.
func deadlineSummary(t *model.Target, now time.Time) (DeadlineSummary, bool) {
	days, ok := t.DaysRemaining(now)
	if !ok {
		return DeadlineSummary{}, false
	}
	return DeadlineSummary{
		TargetID:        t.ID,
		Title:           t.Title,
		DaysRemaining:   days,
		PercentComplete: t.PercentComplete(),
	}, true
}

// nearestDeadlines orders by urgency. A limit of 0 keeps the whole
// list.
func nearestDeadlines(ds []DeadlineSummary, limit int) []DeadlineSummary {
	sort.Slice(ds, func(i, j int) bool {
		return ds[i].DaysRemaining < ds[j].DaysRemaining
	})
	if limit > 0 && len(ds) > limit {
		ds = ds[:limit]
	}
	return ds
}

// Dashboard is the aggregate the home screen renders.
type Dashboard struct {
	Streaks           model.StreakStats `json:"streaks"`
	ActiveTargets     int               `json:"activeTargets"`
	CompletedTargets  int               `json:"completedTargets"`
	Priority          *model.Target     `json:"priority,omitempty"`
	UpcomingDeadlines []DeadlineSummary `json:"upcomingDeadlines"`
	EntryTypeCounts   map[string]int    `json:"entryTypeCounts"`
}

func (s *StatsService) Streaks() (*model.StreakStats, error) {
	entries, err := s.journal.All()
	if err != nil {
		return nil, err
	}

	stats := computeStreaks(entries, s.now(), s.profiles.Location())
	return &stats, nil
}

func (s *StatsService) Dashboard() (*Dashboard, error) {
	entries, err := s.journal.All()
	if err != nil {
		return nil, err
	}

	targets, err := s.targets.All()
	if err != nil {
		return nil, err
	}

	now := s.now()
	dash := &Dashboard{
		Streaks:           computeStreaks(entries, now, s.profiles.Location()),
		UpcomingDeadlines: []DeadlineSummary{},
		EntryTypeCounts:   make(map[string]int),
	}

	for _, e := range entries {
		dash.EntryTypeCounts[e.Type]++
	}

	for _, t := range targets {
		if t.IsComplete() {
			dash.CompletedTargets++
			continue
		}
		dash.ActiveTargets++

		if t.IsPriority {
			dash.Priority = t
		}
		if ds, ok := deadlineSummary(t, now); ok {
			dash.UpcomingDeadlines = append(dash.UpcomingDeadlines, ds)
		}
	}

	dash.UpcomingDeadlines = nearestDeadlines(dash.UpcomingDeadlines, 5)
	return dash, nil
}

// WeeklyDigest summarizes the last seven days for the digest email.
type WeeklyDigest struct {
	WeekStart         time.Time
	WeekEnd           time.Time
	EntriesThisWeek   int
	EntryTypeCounts   map[string]int
	CurrentStreak     int
	CompletedThisWeek []string
	UpcomingDeadlines []DeadlineSummary
}

func (s *StatsService) WeeklyDigest() (*WeeklyDigest, error) {
	entries, err := s.journal.All()
	if err != nil {
		return nil, err
	}

	targets, err := s.targets.All()
	if err != nil {
		return nil, err
	}

	loc := s.profiles.Location()
	now := s.now()
	y, m, d := now.In(loc).Date()
	weekEnd := time.Date(y, m, d, 0, 0, 0, 0, loc)
	weekStart := weekEnd.AddDate(0, 0, -6)

	digest := &WeeklyDigest{
		WeekStart:         weekStart,
		WeekEnd:           weekEnd,
		EntryTypeCounts:   make(map[string]int),
		CurrentStreak:     computeStreaks(entries, now, loc).CurrentStreak,
		UpcomingDeadlines: []DeadlineSummary{},
	}

	for _, e := range entries {
		day := e.Day(loc)
		if day.Before(weekStart) || day.After(weekEnd) {
			continue
		}
		digest.EntriesThisWeek++
		digest.EntryTypeCounts[e.Type]++
	}

	for _, t := range targets {
		if t.IsComplete() {
			if t.CompletedAt != nil && !t.CompletedAt.Before(weekStart) {
				digest.CompletedThisWeek = append(digest.CompletedThisWeek, t.Title)
			}
			continue
		}
		if ds, ok := deadlineSummary(t, now); ok {
			digest.UpcomingDeadlines = append(digest.UpcomingDeadlines, ds)
		}
	}

	digest.UpcomingDeadlines = nearestDeadlines(digest.UpcomingDeadlines, 5)
	return digest, nil
}

// DueSoon lists active targets whose deadline falls inside the next
// withinDays days. Overdue targets stay on the list until they are
// completed or dropped.
func (s *StatsService) DueSoon(withinDays int) ([]DeadlineSummary, error) {
	targets, err := s.targets.All()
	if err != nil {
		return nil, err
	}

	due := []DeadlineSummary{}
	now := s.now()
	for _, t := range targets {
		if t.IsComplete() {
			continue
		}
		if ds, ok := deadlineSummary(t, now); ok && ds.DaysRemaining <= withinDays {
			due = append(due, ds)
		}
	}

	return nearestDeadlines(due, 0), nil
}

// computeStreaks reduces entries to their distinct calendar days in
// loc and counts consecutive runs. The current streak starts at today,
// or at yesterday when today has no entry yet (grace day), and walks
// backward until the first missing day.
func computeStreaks(entries []*model.JournalEntry, now time.Time, loc *time.Location) model.StreakStats {
	stats := model.StreakStats{TotalEntries: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	days := make(map[time.Time]bool, len(entries))
	var last *model.JournalEntry
	for _, e := range entries {
		days[e.Day(loc)] = true
		if last == nil || e.Date.After(last.Date) {
			last = e
		}
	}
	stats.LastEntry = last

	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	stats.HasJournaledToday = days[today]

	start := today
	if !days[start] {
		start = start.AddDate(0, 0, -1)
	}
	for day := start; days[day]; day = day.AddDate(0, 0, -1) {
		stats.CurrentStreak++
	}

	sorted := make([]time.Time, 0, len(days))
	for day := range days {
		sorted = append(sorted, day)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	run := 1
	stats.LongestStreak = 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > stats.LongestStreak {
			stats.LongestStreak = run
		}
	}

	return stats
}
