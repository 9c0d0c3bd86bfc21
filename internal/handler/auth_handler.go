package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/model"
	"taskapi/internal/service"
)

// AuthHandler handles signup and session endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Age      int    `json:"age" validate:"gte=0"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// Signup godoc
// @Summary Create an account
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return respondError(apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(err)
	}

	user, token, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, AuthResponse{User: user.Public(), Token: token})
}

// Login godoc
// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	loginStatus := apperrors.StatusFor(apperrors.ErrAuthentication, http.StatusBadRequest)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(apperrors.ErrUnableToLogin, loginStatus)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(apperrors.ErrUnableToLogin, loginStatus)
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(err, loginStatus)
	}
	return c.JSON(http.StatusOK, AuthResponse{User: user.Public(), Token: token})
}

// Logout godoc
// @Summary Revoke the current session
// @Tags users
// @Security BearerAuth
// @Success 200
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	if err := h.authService.Logout(c.Request().Context(), p.User, p.Token); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusOK)
}

// LogoutAll godoc
// @Summary Revoke every session of the current user
// @Tags users
// @Security BearerAuth
// @Success 200
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/logoutAll [post]
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	if err := h.authService.LogoutAll(c.Request().Context(), p.User); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusOK)
}
