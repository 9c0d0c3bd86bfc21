package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/media"
	"taskapi/internal/service"
)

// AvatarField is the multipart field carrying an avatar upload.
const AvatarField = "avatar"

// UserHandler bundles profile and avatar handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PublicUser
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, p.User.Public())
}

// GetUser godoc
// @Summary Public profile of a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} model.PublicUser
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.svc.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update the current user
// @Description Accepts any subset of name, email, password and age. Any other key rejects the whole request.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body map[string]interface{} true "Fields to change"
// @Success 200 {object} model.PublicUser
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	updates, err := bindUpdates(c)
	if err != nil {
		return respondError(err)
	}
	user, err := h.svc.UpdateUser(c.Request().Context(), p.User, updates)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user.Public())
}

// DeleteMe godoc
// @Summary Delete the current user and all of its tasks
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PublicUser
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	if err := h.svc.DeleteUser(c.Request().Context(), p.User); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, p.User.Public())
}

// UploadAvatar godoc
// @Summary Upload an avatar
// @Description jpg, jpeg or png up to 1,000,000 bytes. Stored as a 250x250 PNG.
// @Tags avatars
// @Accept multipart/form-data
// @Security BearerAuth
// @Param avatar formData file true "Image"
// @Success 200
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	fh, err := c.FormFile(AvatarField)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return respondError(media.ErrTooLarge)
		}
		return respondError(media.ErrMissingFile)
	}
	file, err := fh.Open()
	if err != nil {
		return respondError(err)
	}
	defer file.Close()

	upload := media.Upload{Filename: fh.Filename, Size: fh.Size, Body: file}
	if err := h.svc.SetAvatar(c.Request().Context(), p.User, upload); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusOK)
}

// DeleteAvatar godoc
// @Summary Remove the avatar
// @Tags avatars
// @Security BearerAuth
// @Success 200
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	if err := h.svc.DeleteAvatar(c.Request().Context(), p.User); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusOK)
}

// GetAvatar godoc
// @Summary Avatar of a user
// @Tags avatars
// @Produce png
// @Param id path string true "User ID"
// @Success 200 {file} binary
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /users/{id}/avatar [get]
func (h *UserHandler) GetAvatar(c echo.Context) error {
	data, err := h.svc.GetAvatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(err, apperrors.StatusFor(apperrors.ErrNotFound, http.StatusBadRequest))
	}
	return c.Blob(http.StatusOK, media.ContentType, data)
}
