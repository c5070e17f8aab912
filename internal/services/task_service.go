package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/models"
	"github.com/adanyl0v/go-task-api/internal/storage"
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	tasks    storage.TaskRepository
	validate *validator.Validate
	now      func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskRepository,
) TaskService {
	return &taskServiceImpl{
		logger:   logger,
		tasks:    tasks,
		validate: newValidator(),
		now:      now,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, requester models.Requester) ([]*models.Task, error) {
	tasks, err := s.tasks.GetTasksByUserID(ctx, requester.UserID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", requester.UserID).
			Msg("failed to get tasks by user id")
		return nil, err
	}

	if len(tasks) == 0 {
		s.logger.Info().
			Str("user_id", requester.UserID).
			Msg("no tasks found")
		return nil, ErrNoTasksFound
	}

	s.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", requester.UserID).
		Msg("tasks found")
	return tasks, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, requester models.Requester, input TaskInput) (*models.Task, error) {
	changes, err := s.normalize(input)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("invalid task input")
		return nil, err
	}

	now := s.now()
	task := &models.Task{
		Status:    models.StatusTodo,
		Priority:  models.PriorityLow,
		CreatedBy: requester.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	changes.apply(task)

	err = s.tasks.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", requester.UserID).
			Msg("failed to create task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", requester.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, requester models.Requester, id int64) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, id, requester.UserID)
	if err != nil {
		return nil, s.lookupError(err, id, requester, "failed to get task")
	}
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, requester models.Requester, id int64, input TaskInput) (*models.Task, error) {
	changes, err := s.normalize(input)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Int64("task_id", id).
			Msg("invalid task input")
		return nil, err
	}

	task, err := s.tasks.UpdateTask(ctx, id, requester.UserID, func(task *models.Task) error {
		changes.apply(task)

		updatedAt := s.now()
		if !updatedAt.After(task.UpdatedAt) {
			updatedAt = task.UpdatedAt.Add(time.Microsecond)
		}
		task.UpdatedAt = updatedAt
		return nil
	})
	if err != nil {
		return nil, s.lookupError(err, id, requester, "failed to update task")
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Str("user_id", requester.UserID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, requester models.Requester, id int64) error {
	err := s.tasks.DeleteTask(ctx, id, requester.UserID)
	if err != nil {
		return s.lookupError(err, id, requester, "failed to delete task")
	}

	s.logger.Info().
		Int64("task_id", id).
		Str("user_id", requester.UserID).
		Msg("deleted task")
	return nil
}

// lookupError hides whether a missing task exists under another owner.
func (s *taskServiceImpl) lookupError(err error, id int64, requester models.Requester, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Info().
			Int64("task_id", id).
			Str("user_id", requester.UserID).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Error().
		Err(err).
		Int64("task_id", id).
		Str("user_id", requester.UserID).
		Msg(msg)
	return err
}

var dueDateLayouts = []string{time.RFC3339Nano, time.DateOnly}

func parseDueDate(value string) (time.Time, error) {
	var err error
	for _, layout := range dueDateLayouts {
		var dueDate time.Time
		dueDate, err = time.Parse(layout, value)
		if err == nil {
			return dueDate.UTC().Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, err
}

// taskChanges is a validated TaskInput. Nil status and priority
// are absent, setDueDate and setAssignedTo mark the fields to overwrite.
type taskChanges struct {
	title         string
	description   string
	status        *string
	priority      *string
	dueDate       *time.Time
	setDueDate    bool
	assignedTo    *string
	setAssignedTo bool
}

func (s *taskServiceImpl) normalize(input TaskInput) (taskChanges, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Status != nil && *input.Status == "" {
		input.Status = nil
	}
	if input.Priority != nil && *input.Priority == "" {
		input.Priority = nil
	}
	if input.DueDate != nil {
		input.DueDateSet = true
		input.DueDate = trimOptional(input.DueDate)
	}
	if input.AssignedTo != nil {
		input.AssignedToSet = true
		input.AssignedTo = trimOptional(input.AssignedTo)
	}

	err := validateStruct(s.validate, input)
	if err != nil {
		return taskChanges{}, err
	}

	changes := taskChanges{
		title:         input.Title,
		description:   input.Description,
		status:        input.Status,
		priority:      input.Priority,
		setDueDate:    input.DueDateSet,
		assignedTo:    input.AssignedTo,
		setAssignedTo: input.AssignedToSet,
	}
	if input.DueDate != nil {
		dueDate, err := parseDueDate(*input.DueDate)
		if err != nil {
			return taskChanges{}, NewValidationError("due_date", "invalid value")
		}
		changes.dueDate = &dueDate
	}
	return changes, nil
}

// trimOptional returns nil for a nil or blank value.
func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (c taskChanges) apply(task *models.Task) {
	task.Title = c.title
	task.Description = c.description
	if c.status != nil {
		task.Status = *c.status
	}
	if c.priority != nil {
		task.Priority = *c.priority
	}
	if c.setDueDate {
		task.DueDate = c.dueDate
	}
	if c.setAssignedTo {
		task.AssignedTo = c.assignedTo
	}
}
