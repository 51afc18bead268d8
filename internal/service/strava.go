package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/habitedge/habitedge/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// stravaSourceKey marks imported entries so re-running an import
// skips activities that are already in the journal.
const stravaSourceKey = "source"

// StravaService pulls recent activities from the athlete's Strava
// account and files them as workout entries. The OAuth token lives
// only for the duration of one import; nothing Strava-related is
// persisted.
type StravaService struct {
	config  *oauth2.Config
	journal *JournalService
}

func NewStravaService(clientID, clientSecret, appURL string, journal *JournalService) *StravaService {
	var config *oauth2.Config
	if clientID != "" && clientSecret != "" {
		config = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  appURL + "/api/strava/callback",
			Scopes:       []string{"activity:read"},
			Endpoint:     endpoints.Strava,
		}
	}

	return &StravaService{
		config:  config,
		journal: journal,
	}
}

func (s *StravaService) Enabled() bool {
	return s.config != nil
}

func (s *StravaService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (s *StravaService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return s.config.Exchange(ctx, code)
}

// StravaImportSummary reports one import run.
type StravaImportSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// stravaActivity is the slice of the Strava API response we care
// about.
type stravaActivity struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	SportType        string  `json:"sport_type"`
	Distance         float64 `json:"distance"`    // meters
	MovingTime       int     `json:"moving_time"` // seconds
	StartDate        string  `json:"start_date"`  // RFC3339
	AverageHeartrate float64 `json:"average_heartrate"`
}

// Import fetches activities from the last sinceDays days and creates
// a workout entry for each one not already imported.
func (s *StravaService) Import(ctx context.Context, token *oauth2.Token, sinceDays int) (*StravaImportSummary, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("strava import is disabled: no client credentials configured")
	}
	if sinceDays <= 0 {
		sinceDays = 30
	}

	existing, err := s.journal.Entries(EntryFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	seen := make(map[string]bool)
	for _, e := range existing {
		if src := e.Prompts[stravaSourceKey]; src != "" {
			seen[src] = true
		}
	}

	client := s.config.Client(ctx, token)
	after := time.Now().AddDate(0, 0, -sinceDays).Unix()

	summary := &StravaImportSummary{}
	for page := 1; page <= 10; page++ {
		url := fmt.Sprintf("https://www.strava.com/api/v3/athlete/activities?after=%d&per_page=100&page=%d", after, page)
		resp, err := client.Get(url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch activities: %w", err)
		}

		var activities []stravaActivity
		err = json.NewDecoder(resp.Body).Decode(&activities)
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Warn("failed to close strava response body", "error", closeErr)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode activities: %w", err)
		}
		if len(activities) == 0 {
			break
		}

		for _, a := range activities {
			source := fmt.Sprintf("strava:%d", a.ID)
			if seen[source] {
				summary.Skipped++
				continue
			}

			entry := mapStravaActivity(a, source)
			if _, err := s.journal.Create(entry); err != nil {
				slog.Warn("failed to import strava activity", "activity_id", a.ID, "error", err)
				summary.Skipped++
				continue
			}
			seen[source] = true
			summary.Imported++
		}
	}

	slog.Info("strava import complete", "imported", summary.Imported, "skipped", summary.Skipped)
	return summary, nil
}

func mapStravaActivity(a stravaActivity, source string) *model.JournalEntry {
	title := a.Name
	if title == "" {
		title = a.SportType
	}

	entry := &model.JournalEntry{
		Type:  model.EntryTypeWorkout,
		Title: title,
		Metrics: map[string]float64{
			"durationMinutes": math.Round(float64(a.MovingTime) / 60),
		},
		Prompts: map[string]string{
			stravaSourceKey: source,
		},
	}

	if a.Distance > 0 {
		entry.Metrics["distanceKm"] = math.Round(a.Distance/10) / 100
	}
	if a.AverageHeartrate > 0 {
		entry.Metrics["avgHeartRate"] = a.AverageHeartrate
	}

	if date, err := time.Parse(time.RFC3339, a.StartDate); err == nil {
		entry.Date = date
	}

	return entry
}
