package model

// StreakStats summarizes journaling cadence for the dashboard.
type StreakStats struct {
	CurrentStreak     int           `json:"currentStreak"`
	LongestStreak     int           `json:"longestStreak"`
	TotalEntries      int           `json:"totalEntries"`
	HasJournaledToday bool          `json:"hasJournaledToday"`
	LastEntry         *JournalEntry `json:"lastEntry,omitempty"`
}
