package service

import (
	"strings"
	"time"

	"github.com/habitedge/habitedge/internal/model"
	"github.com/habitedge/habitedge/internal/repository"
	"github.com/habitedge/habitedge/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
}

func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

func (s *ProfileService) ByUserID(userID string) (*model.Profile, error) {
	return s.profileRepo.ByUserID(userID)
}

func (s *ProfileService) Create(profile *model.Profile) error {
	return s.profileRepo.Create(profile)
}

// Update replaces the editable profile fields. An unknown timezone is
// rejected before anything is written.
func (s *ProfileService) Update(userID string, profile *model.Profile) (*model.Profile, error) {
	profile.Name = strings.TrimSpace(profile.Name)

	if err := validation.ValidateName(profile.Name); err != nil {
		return nil, err
	}
	if profile.Timezone != "" {
		if _, err := time.LoadLocation(profile.Timezone); err != nil {
			return nil, &validation.Error{Field: "timezone", Message: "unknown timezone"}
		}
	}

	profile.UserID = userID
	if err := s.profileRepo.Update(profile); err != nil {
		return nil, err
	}

	return s.profileRepo.ByUserID(userID)
}

// Location resolves the athlete's timezone for calendar-day math.
// Installs without a profile (or with a bad timezone) fall back to
// UTC.
func (s *ProfileService) Location() *time.Location {
	user, err := s.userRepo.First()
	if err != nil {
		return time.UTC
	}

	profile, err := s.profileRepo.ByUserID(user.ID)
	if err != nil {
		return time.UTC
	}

	return profile.Location()
}
