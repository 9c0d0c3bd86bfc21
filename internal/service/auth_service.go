package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskapi/internal/auth"
	"taskapi/internal/cache"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/model"
	"taskapi/internal/notify"
	"taskapi/internal/repository"
)

// RegisterInput carries the signup fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// AuthService handles credentials and session tokens.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	FindByCredentials(ctx context.Context, email, password string) (*model.User, error)
	IssueToken(ctx context.Context, user *model.User) (string, error)
	Logout(ctx context.Context, user *model.User, token string) error
	LogoutAll(ctx context.Context, user *model.User) error
}

type authService struct {
	store    repository.Store
	jwt      *auth.JWTService
	notifier notify.Sender
	cache    *cache.Client
	validate *validator.Validate
}

// NewAuthService creates a new authentication service.
func NewAuthService(store repository.Store, jwtService *auth.JWTService, notifier notify.Sender, cache *cache.Client) AuthService {
	if notifier == nil {
		notifier = notify.NewLogSender(nil)
	}
	return &authService{
		store:    store,
		jwt:      jwtService,
		notifier: notifier,
		cache:    cache,
		validate: validator.New(),
	}
}

// Register validates and creates a user, sends the welcome notification and
// opens a first session.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", apperrors.Validation("name is required")
	}
	email, err := normalizeEmail(s.validate, input.Email)
	if err != nil {
		return nil, "", err
	}
	if input.Age < 0 {
		return nil, "", apperrors.Validation("age must be a positive number")
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	_, err = s.store.Users().FindByEmail(ctx, email)
	if err == nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	// the first session is stored by the same insert as the user
	userID := uuid.New()
	token, err := s.jwt.GenerateSessionToken(userID)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	user := &model.User{
		ID:            userID,
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Age:           input.Age,
		SessionTokens: []string{token},
	}
	// the unique index still decides a race between two signups
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, "", err
	}

	s.notifier.SendWelcome(ctx, user.Email, user.Name)
	return user, token, nil
}

// Login checks credentials and opens a new session.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.IssueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// FindByCredentials returns the user owning email if password matches. A
// missing user and a wrong password are indistinguishable to the caller.
func (s *authService) FindByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		auth.BurnCompare(password)
		return nil, apperrors.ErrUnableToLogin
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			auth.BurnCompare(password)
			return nil, apperrors.ErrUnableToLogin
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.ComparePassword(user.PasswordHash, password) {
		return nil, apperrors.ErrUnableToLogin
	}
	return user, nil
}

// IssueToken signs a token for user and appends it to the session list.
func (s *authService) IssueToken(ctx context.Context, user *model.User) (string, error) {
	token, err := s.jwt.GenerateSessionToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	user.SessionTokens = append(user.SessionTokens, token)
	if err := s.store.Users().SaveSessionTokens(ctx, user); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	s.invalidate(ctx, user)
	return token, nil
}

// Logout revokes token only. Other sessions of the user stay valid.
func (s *authService) Logout(ctx context.Context, user *model.User, token string) error {
	user.SessionTokens = slices.DeleteFunc(slices.Clone(user.SessionTokens), func(t string) bool {
		return t == token
	})
	if err := s.store.Users().SaveSessionTokens(ctx, user); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.invalidate(ctx, user)
	return nil
}

// LogoutAll revokes every session of user.
func (s *authService) LogoutAll(ctx context.Context, user *model.User) error {
	user.SessionTokens = []string{}
	if err := s.store.Users().SaveSessionTokens(ctx, user); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.invalidate(ctx, user)
	return nil
}

func (s *authService) invalidate(ctx context.Context, user *model.User) {
	_ = s.cache.Delete(ctx, profileCacheKey(user.ID))
}

// normalizeEmail trims and lower-cases email and checks its format.
func normalizeEmail(validate *validator.Validate, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperrors.Validation("email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", apperrors.Validation("email is invalid")
	}
	return email, nil
}
