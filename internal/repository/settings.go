package repository

import (
	"github.com/jmoiron/sqlx"
)

// SettingsRepository stores small app state strings (scheduler
// bookkeeping and the like) in named kv slots.
type SettingsRepository interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the stored value, or "" when the key was never set.
func (r *settingsRepository) Get(key string) (string, error) {
	value, err := loadSlot(r.db, key)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (r *settingsRepository) Set(key, value string) error {
	return saveSlot(r.db, key, []byte(value))
}
