package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/auth"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/model"
)

func newContext(method, target, body string) echo.Context {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestPrincipal(t *testing.T) {
	c := newContext(http.MethodGet, "/", "")
	_, err := principal(c)
	assert.ErrorIs(t, err, apperrors.ErrPleaseAuthenticate)

	c.Set(PrincipalKey, &auth.Principal{})
	_, err = principal(c)
	assert.ErrorIs(t, err, apperrors.ErrPleaseAuthenticate)

	want := &auth.Principal{User: &model.User{Name: "Ann"}, Token: "t"}
	c.Set(PrincipalKey, want)
	got, err := principal(c)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestBindUpdates_IgnoresPathParams(t *testing.T) {
	c := newContext(http.MethodPatch, "/tasks/abc?completed=false", `{"completed":true}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	updates, err := bindUpdates(c)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"completed": true}, updates)
}

func TestBindUpdates_RejectsNonObjects(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"text"`, `{"a":`} {
		t.Run(body, func(t *testing.T) {
			_, err := bindUpdates(newContext(http.MethodPatch, "/users/me", body))
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		overrides []apperrors.Override
		status    int
		code      string
	}{
		{"not found", apperrors.ErrTaskNotFound, nil, http.StatusNotFound, "NOT_FOUND"},
		{"image route", apperrors.ErrAvatarNotFound, []apperrors.Override{apperrors.StatusFor(apperrors.ErrNotFound, http.StatusBadRequest)}, http.StatusBadRequest, "NOT_FOUND"},
		{"login", apperrors.ErrUnableToLogin, []apperrors.Override{apperrors.StatusFor(apperrors.ErrAuthentication, http.StatusBadRequest)}, http.StatusBadRequest, "UNAUTHENTICATED"},
		{"backend", assert.AnError, nil, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := respondError(tt.err, tt.overrides...)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.status, he.Code)
			body, ok := he.Message.(apperrors.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, tt.code, body.Code)
			assert.ErrorIs(t, he.Internal, tt.err)
		})
	}
}
