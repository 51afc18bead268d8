package repository

import (
	"encoding/json"
	"fmt"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/jmoiron/sqlx"
)

type TargetRepository interface {
	All() ([]*model.Target, error)
	SaveAll(targets []*model.Target) error
}

type targetRepository struct {
	db *sqlx.DB
}

func NewTargetRepository(db *sqlx.DB) TargetRepository {
	return &targetRepository{db: db}
}

// All loads the whole target collection. A missing slot is an empty
// collection, not an error.
func (r *targetRepository) All() ([]*model.Target, error) {
	value, err := loadSlot(r.db, slotTargets)
	if err != nil {
		return nil, fmt.Errorf("load targets slot: %w", err)
	}
	if len(value) == 0 {
		return []*model.Target{}, nil
	}

	var targets []*model.Target
	if err := json.Unmarshal(value, &targets); err != nil {
		return nil, fmt.Errorf("decode targets slot: %w", err)
	}

	// The stored completed flag is only a cache for numeric targets.
	// The ledger wins when they disagree.
	for _, t := range targets {
		if t.Kind == model.TargetKindNumeric {
			t.Completed = t.IsComplete()
		}
	}

	return targets, nil
}

func (r *targetRepository) SaveAll(targets []*model.Target) error {
	if targets == nil {
		targets = []*model.Target{}
	}

	value, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("encode targets slot: %w", err)
	}

	if err := saveSlot(r.db, slotTargets, value); err != nil {
		return fmt.Errorf("save targets slot: %w", err)
	}

	return nil
}
