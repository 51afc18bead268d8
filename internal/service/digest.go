package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitedge/habitedge/internal/repository"
)

const (
	// digestSentSlot remembers the last ISO week a digest went out, so
	// a restart on Sunday evening does not send a second one.
	digestSentSlot = "digest_last_sent"
	// reminderSentSlot holds the last day a deadline reminder went out.
	reminderSentSlot = "reminder_last_sent"

	// reminderWindowDays is how far ahead the reminder looks.
	reminderWindowDays = 3
)

// DigestService sends the scheduled emails: the weekly training
// summary and the deadline reminder. The server runs the schedule when
// WEEKLY_DIGEST is on; trainctl can send either on demand.
type DigestService struct {
	stats    *StatsService
	users    repository.UserRepository
	profiles *ProfileService
	email    *EmailService
	settings repository.SettingsRepository
	now      func() time.Time
}

func NewDigestService(
	stats *StatsService,
	users repository.UserRepository,
	profiles *ProfileService,
	email *EmailService,
	settings repository.SettingsRepository,
) *DigestService {
	return &DigestService{
		stats:    stats,
		users:    users,
		profiles: profiles,
		email:    email,
		settings: settings,
		now:      time.Now,
	}
}

// SendNow builds and sends the digest immediately.
func (s *DigestService) SendNow() error {
	email, name, err := s.recipient()
	if err != nil {
		return err
	}

	digest, err := s.stats.WeeklyDigest()
	if err != nil {
		return fmt.Errorf("failed to build digest: %w", err)
	}

	if err := s.email.SendWeeklyDigestEmail(email, name, digest); err != nil {
		return err
	}

	if err := s.settings.Set(digestSentSlot, s.weekKey()); err != nil {
		slog.Warn("failed to record digest send", "error", err)
	}
	return nil
}

// SendRemindersNow emails the deadline reminder regardless of the
// daily gate. Returns how many targets it covered; zero means nothing
// is due and no mail went out.
func (s *DigestService) SendRemindersNow() (int, error) {
	due, err := s.stats.DueSoon(reminderWindowDays)
	if err != nil {
		return 0, fmt.Errorf("failed to collect deadlines: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	email, name, err := s.recipient()
	if err != nil {
		return 0, err
	}

	if err := s.email.SendDeadlineReminderEmail(email, name, due); err != nil {
		return 0, err
	}

	if err := s.settings.Set(reminderSentSlot, s.dayKey()); err != nil {
		slog.Warn("failed to record reminder send", "error", err)
	}
	return len(due), nil
}

// Run works the email schedule: one digest per week on Sunday evenings
// and at most one deadline reminder per day, both in the athlete's
// timezone. Blocks until ctx is done.
func (s *DigestService) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.maybeSend()
			s.maybeRemind()
		}
	}
}

func (s *DigestService) maybeSend() {
	now := s.now().In(s.profiles.Location())
	if now.Weekday() != time.Sunday || now.Hour() < 18 {
		return
	}

	last, err := s.settings.Get(digestSentSlot)
	if err != nil {
		slog.Warn("failed to read digest state", "error", err)
		return
	}
	if last == s.weekKey() {
		return
	}

	if err := s.SendNow(); err != nil {
		slog.Warn("failed to send weekly digest", "error", err)
	}
}

func (s *DigestService) maybeRemind() {
	// Morning send; earlier ticks wait for the day to start.
	now := s.now().In(s.profiles.Location())
	if now.Hour() < 8 {
		return
	}

	last, err := s.settings.Get(reminderSentSlot)
	if err != nil {
		slog.Warn("failed to read reminder state", "error", err)
		return
	}
	if last == s.dayKey() {
		return
	}

	if _, err := s.SendRemindersNow(); err != nil {
		slog.Warn("failed to send deadline reminder", "error", err)
	}
}

func (s *DigestService) recipient() (email, name string, err error) {
	user, err := s.users.First()
	if err != nil {
		return "", "", fmt.Errorf("no account to send mail to: %w", err)
	}

	name = "Athlete"
	if profile, err := s.profiles.ByUserID(user.ID); err == nil && profile.Name != "" {
		name = profile.Name
	}
	return user.Email, name, nil
}

func (s *DigestService) weekKey() string {
	year, week := s.now().In(s.profiles.Location()).ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (s *DigestService) dayKey() string {
	return s.now().In(s.profiles.Location()).Format("2006-01-02")
}
