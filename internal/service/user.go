package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCurrentPassword = errors.New("current password is incorrect")

type UserService struct {
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
	targetRepository  repository.TargetRepository
	journalRepository repository.JournalRepository
	mediaService      *MediaService
	emailService      *EmailService
}

func NewUserService(
	userRepository repository.UserRepository,
	profileRepository repository.ProfileRepository,
	targetRepository repository.TargetRepository,
	journalRepository repository.JournalRepository,
	mediaService *MediaService,
	emailService *EmailService,
) *UserService {
	return &UserService{
		userRepository:    userRepository,
		profileRepository: profileRepository,
		targetRepository:  targetRepository,
		journalRepository: journalRepository,
		mediaService:      mediaService,
		emailService:      emailService,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	user, err := s.userRepository.ByID(id)
	if err != nil {
		return nil, err
	}

	// AvatarURL is derived, not stored; presigning happens per read.
	if avatar, err := s.mediaService.Avatar(id); err == nil {
		user.AvatarURL = s.mediaService.URL(avatar)
	}

	return user, nil
}

// First returns the install's only account.
func (s *UserService) First() (*model.User, error) {
	return s.userRepository.First()
}

// UpdatePassword changes an existing password after checking the
// current one. Passwordless accounts go through AuthService.SetPassword.
func (s *UserService) UpdatePassword(userID, currentPassword, newPassword string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	if !user.HasPassword() {
		return errors.New("account has no password to change, set one first")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCurrentPassword
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	hashStr := string(hash)
	user.PasswordHash = &hashStr

	if err := s.userRepository.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// DeleteAccount removes the athlete account and everything it owns.
// On a single-athlete server this is a factory reset: the next magic
// link request starts a fresh account.
func (s *UserService) DeleteAccount(userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	// The goodbye email greets by name when a profile exists.
	name := "Athlete"
	if profile, err := s.profileRepository.ByUserID(userID); err == nil && profile.Name != "" {
		name = profile.Name
	}

	// Orphaned files in the bucket beat a deletion that half-happened,
	// so storage cleanup failures only log.
	if err := s.mediaService.DeleteAllUserMediaFromStorage(userID); err != nil {
		slog.Warn("failed to delete user media from storage", "user_id", userID, "error", err)
	}

	if err := s.emailService.SendAccountDeletedEmail(user.Email, name); err != nil {
		slog.Warn("account deleted email not sent", "user_id", userID, "email", user.Email, "error", err)
	}

	// Targets and journal entries live in collection slots, not
	// user-keyed rows, so wipe them explicitly.
	if err := s.targetRepository.SaveAll([]*model.Target{}); err != nil {
		return fmt.Errorf("failed to clear targets: %w", err)
	}
	if err := s.journalRepository.SaveAll([]*model.JournalEntry{}); err != nil {
		return fmt.Errorf("failed to clear journal: %w", err)
	}

	// profiles, tokens and media rows cascade off the user row.
	if err := s.userRepository.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
