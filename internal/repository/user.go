// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"neighborly/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, id uint, name string) (*models.User, error)
	UpdateMutedCategories(ctx context.Context, id uint, muted []models.Category) (*models.User, error)
	UpdatePushToken(ctx context.Context, id uint, token string) (*models.User, error)
	// ListRecipients returns every user in the building holding a non-empty
	// push token, excluding the given user.
	ListRecipients(ctx context.Context, building string, excludeUserID uint) ([]*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// The unique index on email is the source of truth; any pre-insert
		// existence check still races with concurrent signups.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Email already registered")
		}
		return models.NewDependencyError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewDependencyError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, models.NewDependencyError(err)
	}
	return &user, nil
}

func (r *userRepository) UpdateName(ctx context.Context, id uint, name string) (*models.User, error) {
	return r.update(ctx, id, map[string]any{"name": name})
}

func (r *userRepository) UpdateMutedCategories(ctx context.Context, id uint, muted []models.Category) (*models.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.MutedCategories = muted
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, models.NewDependencyError(err)
	}
	return user, nil
}

func (r *userRepository) UpdatePushToken(ctx context.Context, id uint, token string) (*models.User, error) {
	return r.update(ctx, id, map[string]any{"push_token": token})
}

func (r *userRepository) update(ctx context.Context, id uint, fields map[string]any) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, models.NewDependencyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("User", id)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) ListRecipients(ctx context.Context, building string, excludeUserID uint) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("building = ? AND id <> ? AND push_token <> ''", building, excludeUserID).
		Find(&users).Error
	if err != nil {
		return nil, models.NewDependencyError(err)
	}
	return users, nil
}
