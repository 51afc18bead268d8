package repository

import (
	"database/sql"
	"errors"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrMediaNotFound = errors.New("media not found")
)

type MediaRepository interface {
	Create(media *model.Media) error
	ByID(id string) (*model.Media, error)
	ByEntry(entryID int64) ([]*model.Media, error)
	Avatar(userID string) (*model.Media, error)
	AllUserMedia(userID string) ([]*model.Media, error)
	Delete(id string) error
}

type mediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(media *model.Media) error {
	query := `INSERT INTO media (id, user_id, entry_id, type, filename, original_name, mime_type, size, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		media.ID,
		media.UserID,
		media.EntryID,
		media.Type,
		media.Filename,
		media.OriginalName,
		media.MimeType,
		media.Size,
		media.StoragePath,
		media.CreatedAt,
	)

	return err
}

func (r *mediaRepository) ByID(id string) (*model.Media, error) {
	media := &model.Media{}
	query := `SELECT * FROM media WHERE id = $1`

	err := r.db.Get(media, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMediaNotFound
	}

	return media, err
}

func (r *mediaRepository) ByEntry(entryID int64) ([]*model.Media, error) {
	var media []*model.Media
	query := `SELECT * FROM media WHERE entry_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&media, query, entryID)
	if err != nil {
		return nil, err
	}

	return media, nil
}

func (r *mediaRepository) Avatar(userID string) (*model.Media, error) {
	media := &model.Media{}
	query := `SELECT * FROM media WHERE user_id = $1 AND type = $2 ORDER BY created_at DESC LIMIT 1`

	err := r.db.Get(media, query, userID, model.MediaTypeAvatar)
	if err == sql.ErrNoRows {
		return nil, ErrMediaNotFound
	}

	return media, err
}

func (r *mediaRepository) AllUserMedia(userID string) ([]*model.Media, error) {
	var media []*model.Media
	query := `SELECT * FROM media WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&media, query, userID)
	if err != nil {
		return nil, err
	}

	return media, nil
}

func (r *mediaRepository) Delete(id string) error {
	query := `DELETE FROM media WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}
