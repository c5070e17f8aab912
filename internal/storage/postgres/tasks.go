package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-api/internal/models"
	"github.com/adanyl0v/go-task-api/internal/storage"
)

type taskRepository struct {
	logger zerolog.Logger
	db     DB
}

func NewTaskRepository(logger zerolog.Logger, db DB) storage.TaskRepository {
	return &taskRepository{
		logger: logger,
		db:     db,
	}
}

func (r *taskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	const insertTaskQuery = `
INSERT INTO task (title,
                  description,
                  status,
                  priority,
                  due_date,
                  assigned_to,
                  created_by,
                  created_at,
                  updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`
	err := r.db.QueryRow(
		ctx,
		insertTaskQuery,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.AssignedTo,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	r.logger.Debug().
		Int64("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (r *taskRepository) GetTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error) {
	const selectTasksByUserIDQuery = `
SELECT id,
       title,
       description,
       status,
       priority,
       due_date,
       assigned_to,
       created_by,
       created_at,
       updated_at
FROM task
WHERE created_by = $1
ORDER BY created_at DESC, id DESC
`
	rows, err := r.db.Query(ctx, selectTasksByUserIDQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks by user id: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	r.logger.Debug().
		Str("user_id", userID).
		Int("count", len(tasks)).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (r *taskRepository) GetTask(ctx context.Context, id int64, userID string) (*models.Task, error) {
	const selectTaskQuery = `
SELECT id,
       title,
       description,
       status,
       priority,
       due_date,
       assigned_to,
       created_by,
       created_at,
       updated_at
FROM task
WHERE id = $1 AND
      created_by = $2
`
	task, err := scanTask(r.db.QueryRow(ctx, selectTaskQuery, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) UpdateTask(ctx context.Context, id int64, userID string, fn storage.UpdateTaskFunc) (*models.Task, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The row stays locked until commit, so nobody can delete
	// or modify the task between the ownership check and the write.
	const selectTaskForUpdateQuery = `
SELECT id,
       title,
       description,
       status,
       priority,
       due_date,
       assigned_to,
       created_by,
       created_at,
       updated_at
FROM task
WHERE id = $1 AND
      created_by = $2
FOR UPDATE
`
	task, err := scanTask(tx.QueryRow(ctx, selectTaskForUpdateQuery, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select task for update: %w", err)
	}

	err = fn(task)
	if err != nil {
		return nil, err
	}

	const updateTaskQuery = `
UPDATE task
SET title = $1,
    description = $2,
    status = $3,
    priority = $4,
    due_date = $5,
    assigned_to = $6,
    updated_at = $7
WHERE id = $8
RETURNING created_by, created_at
`
	err = tx.QueryRow(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.AssignedTo,
		task.UpdatedAt,
		id,
	).Scan(
		&task.CreatedBy,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	task.ID = id
	task.CreatedAt = task.CreatedAt.UTC()

	err = tx.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	r.logger.Debug().
		Int64("task_id", id).
		Msg("updated task")
	return task, nil
}

func (r *taskRepository) DeleteTask(ctx context.Context, id int64, userID string) error {
	const deleteTaskQuery = `
DELETE FROM task
WHERE id = $1 AND
      created_by = $2
`
	tag, err := r.db.Exec(ctx, deleteTaskQuery, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	r.logger.Debug().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.AssignedTo,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	if task.DueDate != nil {
		dueDate := task.DueDate.UTC()
		task.DueDate = &dueDate
	}
	return &task, nil
}
