package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taskapi/internal/auth"
	apperrors "taskapi/internal/errors"
	"taskapi/internal/handler"
	"taskapi/internal/logging"
	"taskapi/internal/media"
)

// BodyLimit bounds every request body. Avatar uploads are capped lower by
// the media package; this only keeps multipart parsing bounded.
const BodyLimit = "4M"

const avatarUploadPath = "/api/users/me/avatar"

// Handlers groups the route handlers.
type Handlers struct {
	Auth  *handler.AuthHandler
	Users *handler.UserHandler
	Tasks *handler.TaskHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, sessions *auth.SessionValidator, h Handlers, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	e.HTTPErrorHandler = errorHandler(e)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit:   BodyLimit,
		Skipper: isAvatarUpload,
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/users", h.Auth.Signup)
	api.POST("/users/login", h.Auth.Login)

	// Secured routes (require a live session)
	secured := api.Group("", RequireSession(sessions))

	secured.POST("/users/logout", h.Auth.Logout)
	secured.POST("/users/logoutAll", h.Auth.LogoutAll)
	secured.GET("/users/me", h.Users.Me)
	secured.PATCH("/users/me", h.Users.UpdateMe)
	secured.DELETE("/users/me", h.Users.DeleteMe)
	secured.POST("/users/me/avatar", h.Users.UploadAvatar, uploadLimit())
	secured.DELETE("/users/me/avatar", h.Users.DeleteAvatar)

	secured.POST("/tasks", h.Tasks.Create)
	secured.GET("/tasks", h.Tasks.List)
	secured.GET("/tasks/:id", h.Tasks.Get)
	secured.PATCH("/tasks/:id", h.Tasks.Update)
	secured.DELETE("/tasks/:id", h.Tasks.Delete)

	// Public reads by id
	api.GET("/users/:id", h.Users.GetUser)
	api.GET("/users/:id/avatar", h.Users.GetAvatar)
}

func isAvatarUpload(c echo.Context) bool {
	return c.Request().Method == http.MethodPost && c.Path() == avatarUploadPath
}

// uploadLimit bounds avatar upload bodies and reports an oversized body as
// the same validation error the avatar pipeline returns.
func uploadLimit() echo.MiddlewareFunc {
	limit := middleware.BodyLimit(BodyLimit)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := limit(next)
		return func(c echo.Context) error {
			err := limited(c)
			var he *echo.HTTPError
			if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
				return errorResponse(media.ErrTooLarge).SetInternal(err)
			}
			return err
		}
	}
}

// errorResponse maps err into the uniform error body.
func errorResponse(err error) *echo.HTTPError {
	mapped := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
}

// backendError marks a session check that failed for reasons other than the
// token itself.
type backendError struct {
	err error
}

func (e *backendError) Error() string { return e.err.Error() }

func (e *backendError) Unwrap() error { return e.err }

// RequireSession authenticates the bearer token against the user's live
// session list and stores the principal under handler.PrincipalKey. Every
// token problem yields the same 401.
func RequireSession(sessions *auth.SessionValidator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.PrincipalKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			p, err := sessions.Validate(c.Request().Context(), token)
			if err != nil {
				if apperrors.IsInternal(err) {
					return nil, &backendError{err: err}
				}
				return nil, err
			}
			return p, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var backend *backendError
			if errors.As(err, &backend) {
				return errorResponse(backend.err).SetInternal(backend.err)
			}
			return errorResponse(apperrors.ErrPleaseAuthenticate).SetInternal(err)
		},
	})
}

// errorHandler renders every error as an ErrorResponse. Errors the handlers
// did not map themselves, such as routing misses, are mapped here.
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = errorResponse(err)
		}

		body, ok := he.Message.(apperrors.ErrorResponse)
		if !ok {
			body = apperrors.ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  codeForStatus(he.Code),
			}
			if msg, isString := he.Message.(string); isString && he.Code < http.StatusInternalServerError {
				body.Error = msg
			}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(he.Code)
		} else {
			writeErr = c.JSON(he.Code, body)
		}
		if writeErr != nil {
			e.Logger.Error(writeErr)
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperrors.Validation(fe.Field() + " failed on the " + fe.Tag() + " rule")
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}
