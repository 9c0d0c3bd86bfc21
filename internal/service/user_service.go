package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskapi/internal/auth"
	"taskapi/internal/cache"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/media"
	"taskapi/internal/model"
	"taskapi/internal/notify"
	"taskapi/internal/repository"
)

const (
	userCacheTTL   = 5 * time.Minute
	avatarCacheTTL = 10 * time.Minute
)

// allowedUserUpdates is the full set of fields a user may change on itself.
var allowedUserUpdates = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

// UserService exposes profile, account deletion and avatar operations.
type UserService interface {
	GetUser(ctx context.Context, id string) (*model.PublicUser, error)
	UpdateUser(ctx context.Context, user *model.User, updates map[string]any) (*model.User, error)
	DeleteUser(ctx context.Context, user *model.User) error
	SetAvatar(ctx context.Context, user *model.User, upload media.Upload) error
	DeleteAvatar(ctx context.Context, user *model.User) error
	GetAvatar(ctx context.Context, id string) ([]byte, error)
}

type userService struct {
	store    repository.Store
	cache    *cache.Client
	avatars  *media.AvatarProcessor
	notifier notify.Sender
	validate *validator.Validate
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(store repository.Store, cache *cache.Client, avatars *media.AvatarProcessor, notifier notify.Sender) UserService {
	if avatars == nil {
		avatars = media.NewAvatarProcessor()
	}
	if notifier == nil {
		notifier = notify.NewLogSender(nil)
	}
	return &userService{
		store:    store,
		cache:    cache,
		avatars:  avatars,
		notifier: notifier,
		validate: validator.New(),
	}
}

func profileCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

func avatarCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("avatar:%s", id)
}

// GetUser returns the public profile of any user.
func (s *userService) GetUser(ctx context.Context, id string) (*model.PublicUser, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}

	var cached model.PublicUser
	if s.cache.GetJSON(ctx, profileCacheKey(userID), &cached) {
		return &cached, nil
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	s.cache.SetJSON(ctx, profileCacheKey(userID), public, userCacheTTL)
	return &public, nil
}

// UpdateUser applies updates to user. Every key is checked before anything is
// changed, so a rejected request leaves user untouched.
func (s *userService) UpdateUser(ctx context.Context, user *model.User, updates map[string]any) (*model.User, error) {
	for key := range updates {
		if !allowedUserUpdates[key] {
			return nil, apperrors.ErrInvalidUpdates
		}
	}

	next := *user
	for key, value := range updates {
		switch key {
		case "name":
			name, ok := value.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return nil, apperrors.Validation("name is required")
			}
			next.Name = strings.TrimSpace(name)
		case "email":
			raw, ok := value.(string)
			if !ok {
				return nil, apperrors.Validation("email is invalid")
			}
			email, err := normalizeEmail(s.validate, raw)
			if err != nil {
				return nil, err
			}
			next.Email = email
		case "password":
			password, ok := value.(string)
			if !ok {
				return nil, apperrors.Validation("password is required")
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return nil, err
			}
			next.PasswordHash = hash
		case "age":
			age, err := toAge(value)
			if err != nil {
				return nil, err
			}
			next.Age = age
		}
	}

	if next.Email != user.Email {
		existing, err := s.store.Users().FindByEmail(ctx, next.Email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, apperrors.ErrEmailTaken
		case err != nil && !errors.Is(err, apperrors.ErrUserNotFound):
			return nil, fmt.Errorf("check email: %w", err)
		}
	}

	if err := s.store.Users().UpdateProfile(ctx, &next); err != nil {
		return nil, err
	}
	*user = next
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID))
	return user, nil
}

func toAge(value any) (int, error) {
	var age float64
	switch v := value.(type) {
	case float64:
		age = v
	case int:
		age = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, apperrors.Validation("age must be a number")
		}
		age = f
	default:
		return 0, apperrors.Validation("age must be a number")
	}
	if age < 0 {
		return 0, apperrors.Validation("age must be a positive number")
	}
	if age != math.Trunc(age) || age > math.MaxInt32 {
		return 0, apperrors.Validation("age must be a whole number")
	}
	return int(age), nil
}

// DeleteUser removes user and every task it owns in one transaction. Tasks
// go first so a failure never leaves tasks without an owner. Repeating the
// call on a deleted user succeeds without notifying again.
func (s *userService) DeleteUser(ctx context.Context, user *model.User) error {
	var removed int64
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Tasks().DeleteByOwner(ctx, user.ID); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		n, err := tx.Users().Delete(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		removed = n
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, profileCacheKey(user.ID), avatarCacheKey(user.ID))
	if removed > 0 {
		s.notifier.SendCancellation(ctx, user.Email, user.Name)
	}
	return nil
}

// SetAvatar validates and transcodes upload and stores it on user.
func (s *userService) SetAvatar(ctx context.Context, user *model.User, upload media.Upload) error {
	png, err := s.avatars.Process(upload)
	if err != nil {
		return err
	}
	user.Avatar = png
	if err := s.store.Users().SaveAvatar(ctx, user); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID), avatarCacheKey(user.ID))
	return nil
}

// DeleteAvatar clears the avatar of user. Clearing an absent avatar succeeds.
func (s *userService) DeleteAvatar(ctx context.Context, user *model.User) error {
	user.Avatar = nil
	if err := s.store.Users().SaveAvatar(ctx, user); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID), avatarCacheKey(user.ID))
	return nil
}

// GetAvatar returns the stored PNG of the user with id.
func (s *userService) GetAvatar(ctx context.Context, id string) ([]byte, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}

	if data, _ := s.cache.Get(ctx, avatarCacheKey(userID)); data != nil {
		return data, nil
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasAvatar() {
		return nil, apperrors.ErrAvatarNotFound
	}
	_ = s.cache.Set(ctx, avatarCacheKey(userID), user.Avatar, avatarCacheTTL)
	return user.Avatar, nil
}
