package service

import (
	"context"
	"strings"

	"neighborly/internal/models"
	"neighborly/internal/repository"
)

// TokenValidator reports whether a push token is acceptable for storage.
type TokenValidator func(token string) bool

// UserService handles profile and notification settings.
type UserService struct {
	userRepo   repository.UserRepository
	validToken TokenValidator
}

// NewUserService creates a new UserService. validToken guards what push
// tokens may be stored; nil accepts everything.
func NewUserService(userRepo repository.UserRepository, validToken TokenValidator) *UserService {
	return &UserService{userRepo: userRepo, validToken: validToken}
}

// Profile returns the user's own profile.
func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateName changes the user's display name.
func (s *UserService) UpdateName(ctx context.Context, userID uint, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	return s.userRepo.UpdateName(ctx, userID, name)
}

// UpdateMutedCategories replaces the user's muted category set.
func (s *UserService) UpdateMutedCategories(ctx context.Context, userID uint, muted []models.Category) (*models.User, error) {
	seen := make(map[models.Category]bool, len(muted))
	deduped := make([]models.Category, 0, len(muted))
	for _, c := range muted {
		if !models.ValidCategory(c) {
			return nil, models.NewValidationError("Invalid category: " + string(c))
		}
		if !seen[c] {
			seen[c] = true
			deduped = append(deduped, c)
		}
	}
	return s.userRepo.UpdateMutedCategories(ctx, userID, deduped)
}

// UpdatePushToken stores the user's push token. An empty token unregisters
// the device.
func (s *UserService) UpdatePushToken(ctx context.Context, userID uint, token string) (*models.User, error) {
	if token != "" && s.validToken != nil && !s.validToken(token) {
		return nil, models.NewValidationError("Invalid push token format")
	}
	return s.userRepo.UpdatePushToken(ctx, userID, token)
}
