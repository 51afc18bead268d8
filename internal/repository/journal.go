package repository

import (
	"encoding/json"
	"fmt"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/jmoiron/sqlx"
)

type JournalRepository interface {
	All() ([]*model.JournalEntry, error)
	SaveAll(entries []*model.JournalEntry) error
}

type journalRepository struct {
	db *sqlx.DB
}

func NewJournalRepository(db *sqlx.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) All() ([]*model.JournalEntry, error) {
	value, err := loadSlot(r.db, slotJournalEntries)
	if err != nil {
		return nil, fmt.Errorf("load journal slot: %w", err)
	}
	if len(value) == 0 {
		return []*model.JournalEntry{}, nil
	}

	var entries []*model.JournalEntry
	if err := json.Unmarshal(value, &entries); err != nil {
		return nil, fmt.Errorf("decode journal slot: %w", err)
	}

	return entries, nil
}

func (r *journalRepository) SaveAll(entries []*model.JournalEntry) error {
	if entries == nil {
		entries = []*model.JournalEntry{}
	}

	value, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode journal slot: %w", err)
	}

	if err := saveSlot(r.db, slotJournalEntries, value); err != nil {
		return fmt.Errorf("save journal slot: %w", err)
	}

	return nil
}
