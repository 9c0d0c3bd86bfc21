package handler

import (
	"github.com/labstack/echo/v4"

	"taskapi/internal/auth"
	apperrors "taskapi/internal/errors"
)

// PrincipalKey is the echo context key the session middleware stores the
// authenticated principal under.
const PrincipalKey = "principal"

// respondError converts err into the uniform error response. The underlying
// error is kept as the internal cause so the request log carries it.
func respondError(err error, overrides ...apperrors.Override) error {
	httpErr := apperrors.MapErrorToHTTP(err, overrides...)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// principal returns the session principal of an authenticated request.
func principal(c echo.Context) (*auth.Principal, error) {
	p, ok := c.Get(PrincipalKey).(*auth.Principal)
	if !ok || p == nil || p.User == nil {
		return nil, apperrors.ErrPleaseAuthenticate
	}
	return p, nil
}

// bindUpdates decodes a JSON object body into a field map. Only the body is
// read; path and query parameters never become update keys.
func bindUpdates(c echo.Context) (map[string]any, error) {
	updates := map[string]any{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &updates); err != nil {
		return nil, apperrors.Validation("invalid request body")
	}
	return updates, nil
}
