package model

import (
	"time"
)

const (
	MediaTypeAvatar     = "avatar"
	MediaTypeAttachment = "attachment"
)

// Media is an uploaded file: a journal entry attachment or the
// athlete's avatar. The binary lives in object storage; this row is
// the metadata.
type Media struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"-"`
	EntryID      *int64    `db:"entry_id" json:"entryId,omitempty"` // journal entry attachments only
	Type         string    `db:"type" json:"type"`
	Filename     string    `db:"filename" json:"-"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	Size         int64     `db:"size" json:"size"`
	StoragePath  string    `db:"storage_path" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`

	// Presigned fetch URL, filled in when listing (not stored)
	URL string `db:"-" json:"url,omitempty"`
}
