package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that must change together.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	// WithTransaction executes fn within a database transaction. The Store
	// passed to fn is bound to that transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type store struct {
	db    *gorm.DB
	users UserRepository
	tasks TaskRepository
}

// NewStore creates a GORM-backed Store.
func NewStore(db *gorm.DB) Store {
	return &store{
		db:    db,
		users: NewUserRepository(db),
		tasks: NewTaskRepository(db),
	}
}

func (s *store) Users() UserRepository { return s.users }

func (s *store) Tasks() TaskRepository { return s.tasks }

func (s *store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
}
