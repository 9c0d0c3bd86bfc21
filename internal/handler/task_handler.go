package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/service"
)

// TaskHandler handles task endpoints. Every route runs behind the session
// middleware and acts on the caller's tasks only.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTaskRequest represents a task creation request. An owner in the body
// is ignored.
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// Create godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "Task"
// @Success 201 {object} model.Task
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	var req CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return respondError(apperrors.Validation("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return respondError(err)
	}

	task, err := h.taskService.Create(c.Request().Context(), p.User.ID, service.CreateTaskInput{
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// List godoc
// @Summary List the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param completed query string false "true for completed tasks, anything else for open ones"
// @Param sortBy query string false "field[:asc|desc]"
// @Param limit query int false "Page size"
// @Param skip query int false "Offset"
// @Success 200 {array} model.Task
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	tasks, err := h.taskService.List(c.Request().Context(), p.User.ID, c.QueryParams())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get godoc
// @Summary Get one of the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	task, err := h.taskService.Get(c.Request().Context(), p.User.ID, c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary Update one of the caller's tasks
// @Description Accepts description and completed. Any other key rejects the whole request.
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param request body map[string]interface{} true "Fields to change"
// @Success 200 {object} model.Task
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	updates, err := bindUpdates(c)
	if err != nil {
		return respondError(err)
	}
	task, err := h.taskService.Update(c.Request().Context(), p.User.ID, c.Param("id"), updates)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Delete one of the caller's tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} model.Task
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return respondError(err)
	}
	task, err := h.taskService.Delete(c.Request().Context(), p.User.ID, c.Param("id"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, task)
}
