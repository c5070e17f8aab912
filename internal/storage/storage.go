// Package storage defines the persistence contracts for users and tasks.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-api/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

type UserRepository interface {
	// CreateUser inserts the user. It returns ErrAlreadyExists
	// if a user with the same username exists.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if there is no such user.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByUsername returns ErrNotFound if there is no such user.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// UpdateTaskFunc mutates a task loaded for update. Returning an
// error aborts the update and leaves the stored task untouched.
type UpdateTaskFunc func(task *models.Task) error

type TaskRepository interface {
	// CreateTask inserts the task and sets its ID.
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTasksByUserID returns the tasks created by the user,
	// newest first. It returns an empty slice if there are none.
	GetTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error)

	// GetTask returns ErrNotFound if the task doesn't exist
	// or wasn't created by the given user.
	GetTask(ctx context.Context, id int64, userID string) (*models.Task, error)

	// UpdateTask loads the task owned by the user, applies fn and
	// stores the result atomically. It returns ErrNotFound like GetTask.
	UpdateTask(ctx context.Context, id int64, userID string, fn UpdateTaskFunc) (*models.Task, error)

	// DeleteTask removes the task owned by the user. It returns
	// ErrNotFound like GetTask.
	DeleteTask(ctx context.Context, id int64, userID string) error
}
