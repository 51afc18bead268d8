package model

import (
	"time"
)

const (
	EntryTypeGame     = "game"
	EntryTypePractice = "practice"
	EntryTypeWorkout  = "workout"
	EntryTypeFilm     = "film"
)

var EntryTypes = []string{EntryTypeGame, EntryTypePractice, EntryTypeWorkout, EntryTypeFilm}

// GameDetails is filled in for game entries only.
type GameDetails struct {
	Opponent string `json:"opponent,omitempty"`
	Result   string `json:"result,omitempty"` // "win", "loss" or "draw"
	Score    string `json:"score,omitempty"`
}

type JournalEntry struct {
	ID          int64              `json:"id"`
	Type        string             `json:"type"`
	Title       string             `json:"title"`
	Date        time.Time          `json:"date"`
	Metrics     map[string]float64 `json:"metrics,omitempty"` // named numeric ratings
	Prompts     map[string]string  `json:"prompts,omitempty"` // named free-text answers
	GameDetails *GameDetails       `json:"gameDetails,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// Day buckets the entry onto its calendar day in loc. The entry date
// is authoritative for streaks, not the creation time.
func (e *JournalEntry) Day(loc *time.Location) time.Time {
	y, m, d := e.Date.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func ValidEntryType(t string) bool {
	for _, v := range EntryTypes {
		if t == v {
			return true
		}
	}
	return false
}
