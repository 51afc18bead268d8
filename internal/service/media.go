package service

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/storage"
)

type MediaService struct {
	mediaRepo repository.MediaRepository
	storage   storage.Storage
}

func NewMediaService(mediaRepo repository.MediaRepository, storage storage.Storage) *MediaService {
	return &MediaService{
		mediaRepo: mediaRepo,
		storage:   storage,
	}
}

// Enabled reports whether uploads are available. Without object
// storage configured the rest of the app still works.
func (s *MediaService) Enabled() bool {
	return s.storage != nil
}

// Upload stores a file and creates its metadata record. entryID is
// set for journal attachments and nil for avatars.
// Note: type and size validation should be done by the caller before calling Upload
func (s *MediaService) Upload(userID string, entryID *int64, mediaType string, file multipart.File, header *multipart.FileHeader) (*model.Media, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("uploads are disabled: no object storage configured")
	}

	// Sniff the content type from magic bytes rather than trusting
	// the client's Content-Type header.
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind file: %w", err)
	}

	// Generate unique filename
	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	// Avatars get long-lived URLs, attachments stay private
	prefix := "private/attachments"
	if mediaType == model.MediaTypeAvatar {
		prefix = "public/avatars"
	}
	storagePath := filepath.Join(prefix, filename)

	err = s.storage.Save(storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	media := &model.Media{
		ID:           uuid.New().String(),
		UserID:       userID,
		EntryID:      entryID,
		Type:         mediaType,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     mtype.String(),
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.mediaRepo.Create(media)
	if err != nil {
		// If DB insert fails, try to cleanup the uploaded file
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	media.URL = s.URL(media)
	return media, nil
}

// Avatar retrieves the athlete's current avatar
func (s *MediaService) Avatar(userID string) (*model.Media, error) {
	return s.mediaRepo.Avatar(userID)
}

// ByEntry returns the attachments of a journal entry with fetch URLs
// populated.
func (s *MediaService) ByEntry(entryID int64) ([]*model.Media, error) {
	media, err := s.mediaRepo.ByEntry(entryID)
	if err != nil {
		return nil, err
	}

	for _, m := range media {
		m.URL = s.URL(m)
	}
	return media, nil
}

// URL returns the appropriate URL for a media item (long-lived for
// avatars, short presigned for attachments)
func (s *MediaService) URL(media *model.Media) string {
	if media == nil || s.storage == nil {
		return ""
	}

	s3Storage, ok := s.storage.(*storage.S3Storage)
	if ok {
		if media.Type == model.MediaTypeAvatar {
			return s3Storage.PublicURL(media.StoragePath)
		}
		url, err := s3Storage.PresignedURL(media.StoragePath, s3Storage.PrivateExpiry())
		if err != nil {
			// Fallback to public URL if presigning fails
			return s3Storage.PublicURL(media.StoragePath)
		}
		return url
	}

	// Other storage implementations: use default URL method
	return s.storage.URL(media.StoragePath)
}

// Delete removes a media item from storage and database
func (s *MediaService) Delete(mediaID string) error {
	media, err := s.mediaRepo.ByID(mediaID)
	if err != nil {
		return fmt.Errorf("failed to get media: %w", err)
	}

	// Delete from storage (best effort)
	if s.storage != nil {
		delErr := s.storage.Delete(media.StoragePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage", "error", delErr, "path", media.StoragePath)
		}
	}

	err = s.mediaRepo.Delete(mediaID)
	if err != nil {
		return fmt.Errorf("failed to delete media record: %w", err)
	}

	return nil
}

// DeleteUserAvatar deletes the athlete's avatar
func (s *MediaService) DeleteUserAvatar(userID string) error {
	media, err := s.Avatar(userID)
	if err != nil {
		if err == repository.ErrMediaNotFound {
			return nil // No avatar to delete
		}
		return err
	}

	return s.Delete(media.ID)
}

// AllUserMedia retrieves all media owned by a user
func (s *MediaService) AllUserMedia(userID string) ([]*model.Media, error) {
	return s.mediaRepo.AllUserMedia(userID)
}

func (s *MediaService) DeleteAllUserMediaFromStorage(userID string) error {
	if s.storage == nil {
		return nil
	}

	media, err := s.mediaRepo.AllUserMedia(userID)
	if err != nil {
		return fmt.Errorf("failed to get user media: %w", err)
	}

	for _, m := range media {
		err = s.storage.Delete(m.StoragePath)
		if err != nil {
			// Log but continue - physical file may already be gone
			slog.Warn("failed to delete file from storage", "storage_path", m.StoragePath, "error", err)
		}
	}

	return nil
}
