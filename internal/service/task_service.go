package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/model"
	"taskapi/internal/repository"
)

// allowedTaskUpdates is the full set of fields an owner may change on a task.
var allowedTaskUpdates = map[string]bool{
	"description": true,
	"completed":   true,
}

// CreateTaskInput carries the fields a caller may set on a new task. There
// is no owner field; the owner always comes from the session.
type CreateTaskInput struct {
	Description string
	Completed   bool
}

// TaskService exposes task operations, all scoped to one owner.
type TaskService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*model.Task, error)
	List(ctx context.Context, ownerID uuid.UUID, params url.Values) ([]model.Task, error)
	Get(ctx context.Context, ownerID uuid.UUID, id string) (*model.Task, error)
	Update(ctx context.Context, ownerID uuid.UUID, id string, updates map[string]any) (*model.Task, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id string) (*model.Task, error)
}

type taskService struct {
	tasks repository.TaskRepository
}

// NewTaskService creates a new task service.
func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*model.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.Validation("description is required")
	}
	task := &model.Task{
		Description: description,
		Completed:   input.Completed,
		OwnerID:     ownerID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context, ownerID uuid.UUID, params url.Values) ([]model.Task, error) {
	return s.tasks.List(ctx, repository.ParseTaskQuery(ownerID, params))
}

func (s *taskService) Get(ctx context.Context, ownerID uuid.UUID, id string) (*model.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrTaskNotFound
	}
	return s.tasks.FindOwned(ctx, taskID, ownerID)
}

// Update rejects unknown keys before looking the task up.
func (s *taskService) Update(ctx context.Context, ownerID uuid.UUID, id string, updates map[string]any) (*model.Task, error) {
	for key := range updates {
		if !allowedTaskUpdates[key] {
			return nil, apperrors.ErrInvalidUpdates
		}
	}

	var (
		description *string
		completed   *bool
	)
	if v, ok := updates["description"]; ok {
		d, isString := v.(string)
		if !isString || strings.TrimSpace(d) == "" {
			return nil, apperrors.Validation("description is required")
		}
		d = strings.TrimSpace(d)
		description = &d
	}
	if v, ok := updates["completed"]; ok {
		c, isBool := v.(bool)
		if !isBool {
			return nil, apperrors.Validation("completed must be a boolean")
		}
		completed = &c
	}

	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if description != nil {
		task.Description = *description
	}
	if completed != nil {
		task.Completed = *completed
	}
	if err := s.tasks.UpdateOwned(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID uuid.UUID, id string) (*model.Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.ErrTaskNotFound
	}
	return s.tasks.DeleteOwned(ctx, taskID, ownerID)
}
