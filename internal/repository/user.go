// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"habitnavi/internal/cache"
	"habitnavi/internal/line"
	"habitnavi/internal/models"
	"habitnavi/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByLineID(ctx context.Context, lineUserID string) (*models.User, error)
	GetOrCreate(ctx context.Context, lineUserID string, profile *line.Profile) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	RefreshProfile(ctx context.Context, user *models.User, profile *line.Profile) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByLineID looks a user up by platform id. Returns (nil, nil) when the
// user has never been seen; callers decide whether that is an error.
func (r *userRepository) GetByLineID(ctx context.Context, lineUserID string) (*models.User, error) {
	var user models.User
	key := cache.UserKey(lineUserID)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", lineUserID)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.ErrCodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetOrCreate resolves a platform id to a user, creating the row on first
// contact. profile is applied only when creating; later profile changes go
// through Update. A concurrent create racing on the unique line_user_id
// index falls back to re-reading the winner's row.
func (r *userRepository) GetOrCreate(ctx context.Context, lineUserID string, profile *line.Profile) (*models.User, error) {
	user, err := r.GetByLineID(ctx, lineUserID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{LineUserID: lineUserID}
	if profile != nil {
		user.DisplayName = optional(profile.DisplayName)
		user.PictureURL = optional(profile.PictureURL)
		user.StatusMessage = optional(profile.StatusMessage)
	}

	if err := r.Create(ctx, user); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.ErrCodeValidation {
			// Lost the insert race; the row exists now.
			if existing, gerr := r.GetByLineID(ctx, lineUserID); gerr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.LineUserID)
	return nil
}

// RefreshProfile overwrites the user's display attributes with what the
// platform reports now and persists the row. Attributes the platform no
// longer exposes are cleared.
func (r *userRepository) RefreshProfile(ctx context.Context, user *models.User, profile *line.Profile) error {
	if profile == nil {
		return nil
	}
	user.DisplayName = optional(profile.DisplayName)
	user.PictureURL = optional(profile.PictureURL)
	user.StatusMessage = optional(profile.StatusMessage)
	return r.Update(ctx, user)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; sqlite phrases it differently.
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
