package validation

import (
	"math"
	"strings"

	"github.com/habitedge/habitedge/internal/model"
)

// ValidateJournalEntry checks an entry before create or edit.
func ValidateJournalEntry(e *model.JournalEntry) error {
	if !model.ValidEntryType(e.Type) {
		return &Error{Field: "type", Message: "type must be one of: game, practice, workout, film"}
	}
	if strings.TrimSpace(e.Title) == "" {
		return &Error{Field: "title", Message: "title is required"}
	}
	if len(e.Title) > 200 {
		return &Error{Field: "title", Message: "title is too long (max 200 characters)"}
	}
	if e.Date.IsZero() {
		return &Error{Field: "date", Message: "date is required"}
	}

	for name, value := range e.Metrics {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return &Error{Field: "metrics." + name, Message: "rating must be a finite number"}
		}
	}

	if e.GameDetails != nil && e.Type != model.EntryTypeGame {
		return &Error{Field: "gameDetails", Message: "game details are only allowed on game entries"}
	}

	return nil
}
