package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "taskapi/internal/errors"
	"taskapi/internal/model"
)

// TaskRepository defines task persistence operations. Every read and write
// except Create is scoped to an owner.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	List(ctx context.Context, query TaskQuery) ([]model.Task, error)
	FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
	UpdateOwned(ctx context.Context, task *model.Task) error
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create creates a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// List returns the tasks matching query, always restricted to query.OwnerID.
func (r *taskRepository) List(ctx context.Context, query TaskQuery) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	if err := r.db.WithContext(ctx).Scopes(query.Scope).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindOwned finds a task by id and owner jointly.
func (r *taskRepository) FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Scopes(OwnedBy(ownerID)).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// UpdateOwned writes the mutable columns of task, matching on id and owner.
func (r *taskRepository) UpdateOwned(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Model(task).
		Scopes(OwnedBy(task.OwnerID)).
		Select("Description", "Completed", "UpdatedAt").
		Updates(task).Error
}

// DeleteOwned deletes a task by id and owner and returns what was deleted.
func (r *taskRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	task, err := r.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Scopes(OwnedBy(ownerID)).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrTaskNotFound
	}
	return task, nil
}

// DeleteByOwner removes every task of ownerID. It is safe to repeat.
func (r *taskRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Scopes(OwnedBy(ownerID)).Delete(&model.Task{})
	return res.RowsAffected, res.Error
}
