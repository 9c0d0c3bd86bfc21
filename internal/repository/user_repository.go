package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/model"
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	SaveSessionTokens(ctx context.Context, user *model.User) error
	SaveAvatar(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translateUserError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateUserError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateUserError(err)
	}
	return &user, nil
}

// UpdateProfile writes the user-editable columns. Zero values are written too.
func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	return translateUserError(r.db.WithContext(ctx).Model(user).
		Select("Name", "Email", "PasswordHash", "Age").
		Updates(user).Error)
}

// SaveSessionTokens overwrites the token list with the in-memory copy. The
// read-modify-write around it is not atomic against a concurrent login or
// logout on the same user; the last writer wins.
func (r *userRepository) SaveSessionTokens(ctx context.Context, user *model.User) error {
	return translateUserError(r.db.WithContext(ctx).Model(user).
		Select("SessionTokens").
		Updates(user).Error)
}

// SaveAvatar overwrites the avatar column; a nil avatar clears it.
func (r *userRepository) SaveAvatar(ctx context.Context, user *model.User) error {
	return translateUserError(r.db.WithContext(ctx).Model(user).
		Select("Avatar").
		Updates(user).Error)
}

// Delete removes the user row and reports how many rows went. Deleting an
// absent user is not an error.
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	return res.RowsAffected, res.Error
}

func translateUserError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrEmailTaken
	default:
		return err
	}
}
