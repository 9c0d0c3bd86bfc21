package auth

import (
	"context"
	"slices"

	"github.com/google/uuid"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/model"
)

// UserFinder loads users for session checks.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Principal is the authenticated identity attached to a request. Token is
// kept so logout can revoke exactly this session.
type Principal struct {
	User  *model.User
	Token string
}

// SessionValidator resolves bearer tokens against the user store on every
// call. Nothing is cached, so a revoked token fails on the next request.
type SessionValidator struct {
	jwt   *JWTService
	users UserFinder
}

// NewSessionValidator creates a validator.
func NewSessionValidator(jwt *JWTService, users UserFinder) *SessionValidator {
	return &SessionValidator{jwt: jwt, users: users}
}

// Validate checks the signature, loads the claimed user and requires token to
// be one of its current sessions. Every failure returns the same error.
func (v *SessionValidator) Validate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, apperrors.ErrPleaseAuthenticate
	}
	userID, err := v.jwt.ExtractUserID(token)
	if err != nil {
		return nil, apperrors.ErrPleaseAuthenticate
	}
	user, err := v.users.FindByID(ctx, userID)
	if err != nil {
		if apperrors.IsInternal(err) {
			return nil, err
		}
		return nil, apperrors.ErrPleaseAuthenticate
	}
	if !slices.Contains(user.SessionTokens, token) {
		return nil, apperrors.ErrPleaseAuthenticate
	}
	return &Principal{User: user, Token: token}, nil
}
