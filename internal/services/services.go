package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-api/internal/models"
)

var (
	ErrUserAlreadyExists  = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTaskNotFound       = errors.New("task not found")
	ErrNoTasksFound       = errors.New("no tasks found")
)

type AuthService interface {
	// Signup creates a user with the given email, name and password.
	//
	// The username is the email trimmed and lowercased, so two emails
	// differing only in case or surrounding spaces are the same user.
	// The password is stored as an argon2id hash.
	//
	// It returns a *ValidationError if any field is missing or
	// malformed and ErrUserAlreadyExists if the email is taken.
	Signup(ctx context.Context, params SignupParams) (*models.User, error)

	// Authenticate verifies the credentials and issues an access
	// and a refresh token. The refresh token is registered as a
	// session so that it can be revoked.
	//
	// It returns ErrInvalidCredentials both for an unknown
	// username and for a wrong password.
	Authenticate(ctx context.Context, params LoginParams) (*TokenPair, error)

	// Refresh issues a new access token for a live refresh token.
	//
	// It returns ErrInvalidToken if the token is malformed, expired,
	// not a refresh token or its session was revoked.
	Refresh(ctx context.Context, refreshToken string) (*AccessToken, error)

	// Logout revokes the refresh token of the requester.
	//
	// It returns ErrInvalidToken if the token isn't a live
	// refresh token of the requester.
	Logout(ctx context.Context, requester models.Requester, refreshToken string) error

	// Authorize resolves an access token to the requester it was
	// issued for. It returns ErrInvalidToken if the token is not a
	// valid access token or its user no longer exists.
	Authorize(ctx context.Context, accessToken string) (*models.Requester, error)
}

type TaskService interface {
	// ListTasks returns the requester's tasks, newest first.
	//
	// It returns ErrNoTasksFound rather than an empty slice
	// if the requester has no tasks.
	ListTasks(ctx context.Context, requester models.Requester) ([]*models.Task, error)

	// CreateTask validates the input, applies the default status
	// and priority and stores a task owned by the requester.
	CreateTask(ctx context.Context, requester models.Requester, input TaskInput) (*models.Task, error)

	// GetTask returns ErrTaskNotFound if the task doesn't exist
	// or belongs to another user. Both cases are indistinguishable.
	GetTask(ctx context.Context, requester models.Requester, id int64) (*models.Task, error)

	// UpdateTask overwrites the title, the description and every
	// optional field present in the input. Absent optional fields keep
	// their stored values, a due date or assignee sent as null is cleared.
	// The owner and the creation time never change, the update time
	// always moves forward.
	//
	// It returns a *ValidationError or ErrTaskNotFound like GetTask.
	UpdateTask(ctx context.Context, requester models.Requester, id int64, input TaskInput) (*models.Task, error)

	// DeleteTask permanently removes the task.
	// It returns ErrTaskNotFound like GetTask.
	DeleteTask(ctx context.Context, requester models.Requester, id int64) error
}

type SignupParams struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
}

type LoginParams struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type TokenPair struct {
	Access  *IssuedToken
	Refresh *IssuedToken
}

type AccessToken struct {
	Access *IssuedToken
}

// TaskInput holds the client-writable fields of a task.
// A nil or empty Status or Priority is absent. DueDate is an
// RFC 3339 datetime or a plain date.
//
// DueDateSet and AssignedToSet mark a field that was sent as null.
// A non-nil DueDate or AssignedTo is always treated as sent.
type TaskInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"required"`
	Status      *string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS COMPLETED BLOCKED"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *string `json:"due_date" validate:"omitempty,duedate"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,max=100"`

	DueDateSet    bool `json:"-"`
	AssignedToSet bool `json:"-"`
}
