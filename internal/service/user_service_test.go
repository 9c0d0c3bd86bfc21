package service

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskapi/internal/auth"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/media"
)

func TestUserService_GetUser(t *testing.T) {
	s := newTestServices(t)
	user, _ := s.register(t, "Ann", "ann@example.com")
	ctx := context.Background()

	public, err := s.users.GetUser(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.ID, public.ID)
	assert.Equal(t, "ann@example.com", public.Email)
	assert.False(t, public.HasAvatar)

	_, err = s.users.GetUser(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_UpdateUser(t *testing.T) {
	s := newTestServices(t)
	user, _ := s.register(t, "Ann", "ann@example.com")
	ctx := context.Background()

	updated, err := s.users.UpdateUser(ctx, user, map[string]any{
		"name":  " Annie ",
		"email": "ANNIE@example.com",
		"age":   float64(41),
	})
	require.NoError(t, err)

	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, "annie@example.com", updated.Email)
	assert.Equal(t, 41, updated.Age)

	stored := s.reload(t, user)
	assert.Equal(t, "Annie", stored.Name)
	assert.Equal(t, "annie@example.com", stored.Email)
	assert.Equal(t, 41, stored.Age)
}

func TestUserService_UpdateUserIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name    string
		updates map[string]any
		wantErr error
	}{
		{"unknown key", map[string]any{"isAdmin": true}, apperrors.ErrInvalidUpdates},
		{"unknown key with valid keys", map[string]any{"name": "Mallory", "_id": "x"}, apperrors.ErrInvalidUpdates},
		{"session tokens", map[string]any{"tokens": []any{}}, apperrors.ErrInvalidUpdates},
		{"name wrong type", map[string]any{"name": 12.0}, apperrors.ErrValidation},
		{"empty name", map[string]any{"name": "  "}, apperrors.ErrValidation},
		{"bad email", map[string]any{"email": "nope"}, apperrors.ErrValidation},
		{"negative age", map[string]any{"age": -3.0}, apperrors.ErrValidation},
		{"fractional age", map[string]any{"age": 3.5}, apperrors.ErrValidation},
		{"age as string", map[string]any{"age": "3"}, apperrors.ErrValidation},
		{"password policy", map[string]any{"name": "Mallory", "password": "PASSWORD123"}, apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServices(t)
			user, _ := s.register(t, "Ann", "ann@example.com")

			_, err := s.users.UpdateUser(context.Background(), user, tt.updates)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, "Ann", user.Name)
			stored := s.reload(t, user)
			assert.Equal(t, "Ann", stored.Name)
			assert.Equal(t, "ann@example.com", stored.Email)
			assert.Equal(t, 30, stored.Age)
			assert.True(t, auth.ComparePassword(stored.PasswordHash, "s3cret-phrase"))
		})
	}
}

func TestUserService_UpdateUserEmailConflict(t *testing.T) {
	s := newTestServices(t)
	s.register(t, "Bob", "bob@example.com")
	ann, _ := s.register(t, "Ann", "ann@example.com")

	_, err := s.users.UpdateUser(context.Background(), ann, map[string]any{"email": "Bob@Example.com"})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "ann@example.com", s.reload(t, ann).Email)
}

func TestUserService_UpdatePasswordRehashes(t *testing.T) {
	s := newTestServices(t)
	user, _ := s.register(t, "Ann", "ann@example.com")
	ctx := context.Background()

	_, err := s.users.UpdateUser(ctx, user, map[string]any{"password": "fresh-phrase"})
	require.NoError(t, err)

	_, _, err = s.auth.Login(ctx, "ann@example.com", "s3cret-phrase")
	assert.ErrorIs(t, err, apperrors.ErrUnableToLogin)
	_, _, err = s.auth.Login(ctx, "ann@example.com", "fresh-phrase")
	assert.NoError(t, err)
}

func TestUserService_DeleteUserCascades(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	ann, _ := s.register(t, "Ann", "ann@example.com")
	bob, _ := s.register(t, "Bob", "bob@example.com")

	for _, d := range []string{"one", "two", "three"} {
		_, err := s.tasks.Create(ctx, ann.ID, CreateTaskInput{Description: d})
		require.NoError(t, err)
	}
	bobTask, err := s.tasks.Create(ctx, bob.ID, CreateTaskInput{Description: "bob's"})
	require.NoError(t, err)

	require.NoError(t, s.users.DeleteUser(ctx, ann))

	_, err = s.store.Users().FindByID(ctx, ann.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	remaining, err := s.tasks.List(ctx, ann.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	kept, err := s.tasks.Get(ctx, bob.ID, bobTask.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "bob's", kept.Description)

	s.sender.AssertCalled(t, "SendCancellation", mock.Anything, "ann@example.com", "Ann")

	// retrying a finished deletion is harmless and mails nobody
	assert.NoError(t, s.users.DeleteUser(ctx, ann))
	s.sender.AssertNumberOfCalls(t, "SendCancellation", 1)
}

func TestUserService_Avatar(t *testing.T) {
	s := newTestServices(t)
	user, _ := s.register(t, "Ann", "ann@example.com")
	ctx := context.Background()

	_, err := s.users.GetAvatar(ctx, user.ID.String())
	assert.ErrorIs(t, err, apperrors.ErrAvatarNotFound)

	require.NoError(t, s.users.SetAvatar(ctx, user, pngUpload(t, "Me.PNG", 400, 300)))

	data, err := s.users.GetAvatar(ctx, user.ID.String())
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 250, img.Bounds().Dx())
	assert.Equal(t, 250, img.Bounds().Dy())

	public, err := s.users.GetUser(ctx, user.ID.String())
	require.NoError(t, err)
	assert.True(t, public.HasAvatar)

	require.NoError(t, s.users.DeleteAvatar(ctx, user))
	require.NoError(t, s.users.DeleteAvatar(ctx, user))

	_, err = s.users.GetAvatar(ctx, user.ID.String())
	assert.ErrorIs(t, err, apperrors.ErrAvatarNotFound)
	assert.False(t, s.reload(t, user).HasAvatar())
}

func TestUserService_AvatarRejections(t *testing.T) {
	s := newTestServices(t)
	user, _ := s.register(t, "Ann", "ann@example.com")
	ctx := context.Background()

	err := s.users.SetAvatar(ctx, user, pngUpload(t, "me.gif", 10, 10))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = s.users.SetAvatar(ctx, user, media.Upload{
		Filename: "huge.png",
		Size:     media.MaxUploadBytes + 1,
		Body:     strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = s.users.SetAvatar(ctx, user, media.Upload{
		Filename: "fake.jpg",
		Size:     9,
		Body:     strings.NewReader("not a jpg"),
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.False(t, s.reload(t, user).HasAvatar())
}

func TestUserService_GetAvatarUnknownUser(t *testing.T) {
	s := newTestServices(t)

	_, err := s.users.GetAvatar(context.Background(), "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = s.users.GetAvatar(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
