package model

import "time"

// Profile holds the athlete's onboarding answers. Timezone decides
// which calendar day a journal entry lands on for streak purposes.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Sport     string    `db:"sport" json:"sport"`
	Position  string    `db:"position" json:"position,omitempty"`
	Level     string    `db:"level" json:"level,omitempty"`
	Timezone  string    `db:"timezone" json:"timezone"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Location resolves the stored timezone, falling back to UTC when it
// is empty or unknown.
func (p *Profile) Location() *time.Location {
	if p == nil || p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
