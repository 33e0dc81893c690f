package service

import (
	"context"
	"strings"

	"studyhub/internal/database"
	"studyhub/internal/models"
	"studyhub/internal/observability"
	"studyhub/internal/repository"
	"studyhub/internal/validation"
)

type ProfileService struct {
	users repository.UserRepository
}

func NewProfileService(users repository.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (_ *models.Profile, err error) {
	defer observability.TrackOperation("get_profile")(&err)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, fail(ctx, "Error fetching profile", err)
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of patch and returns the stored profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, patch models.ProfilePatch) (_ *models.Profile, err error) {
	defer observability.TrackOperation("update_profile")(&err)
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		patch.Username = &username
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	updates := patch.Updates()
	if len(updates) == 0 {
		return s.GetProfile(ctx, userID)
	}
	profile, err := s.users.UpdateProfile(ctx, userID, updates)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, models.NewDuplicateError("Username", err)
		}
		return nil, fail(ctx, "Error updating profile", err)
	}
	return profile, nil
}

