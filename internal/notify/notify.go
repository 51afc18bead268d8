// Package notify fans domain events out to live websocket clients and
// an optional webhook endpoint.
package notify

import (
	"time"

	"github.com/habitedge/habitedge/internal/model"
)

const (
	EventTargetCompleted = "target.completed"
	EventEntryLogged     = "journal.entry_logged"
	EventStreakMilestone = "streak.milestone"
)

// Event is the wire envelope for websocket frames and webhook
// payloads. Changes should be additive.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// Notifier receives domain events. Implementations must not block the
// caller; mutations fire events after their save succeeds.
type Notifier interface {
	TargetCompleted(target *model.Target)
	EntryLogged(entry *model.JournalEntry)
	StreakMilestone(days int)
}

func newTargetCompleted(target *model.Target) Event {
	return Event{
		Type: EventTargetCompleted,
		At:   time.Now(),
		Data: map[string]any{
			"id":          target.ID,
			"title":       target.Title,
			"kind":        target.Kind,
			"completedAt": target.CompletedAt,
		},
	}
}

func newEntryLogged(entry *model.JournalEntry) Event {
	return Event{
		Type: EventEntryLogged,
		At:   time.Now(),
		Data: map[string]any{
			"id":    entry.ID,
			"type":  entry.Type,
			"title": entry.Title,
			"date":  entry.Date,
		},
	}
}

func newStreakMilestone(days int) Event {
	return Event{
		Type: EventStreakMilestone,
		At:   time.Now(),
		Data: map[string]any{
			"days": days,
		},
	}
}

// Multi forwards each event to every notifier in order.
type Multi []Notifier

func (m Multi) TargetCompleted(target *model.Target) {
	for _, n := range m {
		n.TargetCompleted(target)
	}
}

func (m Multi) EntryLogged(entry *model.JournalEntry) {
	for _, n := range m {
		n.EntryLogged(entry)
	}
}

func (m Multi) StreakMilestone(days int) {
	for _, n := range m {
		n.StreakMilestone(days)
	}
}

// Nop drops every event. The CLI runs with it.
type Nop struct{}

func (Nop) TargetCompleted(*model.Target)   {}
func (Nop) EntryLogged(*model.JournalEntry) {}
func (Nop) StreakMilestone(int)             {}
