package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskapi/internal/auth"
	"taskapi/internal/media"
	"taskapi/internal/model"
	"taskapi/internal/repository"
	"taskapi/internal/testsupport"
)

// MockSender is a mock implementation of notify.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendWelcome(ctx context.Context, email, name string) {
	m.Called(ctx, email, name)
}

func (m *MockSender) SendCancellation(ctx context.Context, email, name string) {
	m.Called(ctx, email, name)
}

type testServices struct {
	store  repository.Store
	jwt    *auth.JWTService
	sender *MockSender
	auth   AuthService
	users  UserService
	tasks  TaskService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	store := repository.NewStore(testsupport.NewDB(t))
	sender := new(MockSender)
	sender.On("SendWelcome", mock.Anything, mock.Anything, mock.Anything).Maybe()
	sender.On("SendCancellation", mock.Anything, mock.Anything, mock.Anything).Maybe()
	jwtService := auth.NewJWTService("test-secret")

	return &testServices{
		store:  store,
		jwt:    jwtService,
		sender: sender,
		auth:   NewAuthService(store, jwtService, sender, nil),
		users:  NewUserService(store, nil, media.NewAvatarProcessor(), sender),
		tasks:  NewTaskService(store.Tasks()),
	}
}

func (s *testServices) register(t *testing.T, name, email string) (*model.User, string) {
	t.Helper()
	user, token, err := s.auth.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: "s3cret-phrase",
		Age:      30,
	})
	require.NoError(t, err)
	return user, token
}

func (s *testServices) reload(t *testing.T, user *model.User) *model.User {
	t.Helper()
	fresh, err := s.store.Users().FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	return fresh
}

func pngUpload(t *testing.T, name string, w, h int) media.Upload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return media.Upload{Filename: name, Size: int64(buf.Len()), Body: &buf}
}
