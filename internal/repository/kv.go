package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// Domain collections are persisted whole: one named slot per
// collection holding the serialized array. Reads load everything,
// writes replace everything. There is no per-record granularity.
const (
	slotTargets        = "targets"
	slotJournalEntries = "journal_entries"
)

func loadSlot(db *sqlx.DB, slot string) ([]byte, error) {
	var value []byte
	err := db.Get(&value, `SELECT value FROM kv_slots WHERE slot = $1`, slot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return value, err
}

func saveSlot(db *sqlx.DB, slot string, value []byte) error {
	query := `INSERT INTO kv_slots (slot, value, updated_at) VALUES ($1, $2, $3)
	          ON CONFLICT (slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := db.Exec(query, slot, value, time.Now())
	return err
}
