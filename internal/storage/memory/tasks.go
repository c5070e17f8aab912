package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/adanyl0v/go-task-api/internal/models"
	"github.com/adanyl0v/go-task-api/internal/storage"
)

type taskRepository struct {
	mu     sync.RWMutex
	lastID int64
	tasks  map[int64]*models.Task
}

func NewTaskRepository() storage.TaskRepository {
	return &taskRepository{
		tasks: make(map[int64]*models.Task),
	}
}

func (r *taskRepository) CreateTask(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	task.ID = r.lastID
	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *taskRepository) GetTasksByUserID(_ context.Context, userID string) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, task := range r.tasks {
		if task.CreatedBy == userID {
			tasks = append(tasks, task.Clone())
		}
	}

	slices.SortFunc(tasks, func(a, b *models.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
	return tasks, nil
}

func (r *taskRepository) GetTask(_ context.Context, id int64, userID string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok || task.CreatedBy != userID {
		return nil, storage.ErrNotFound
	}
	return task.Clone(), nil
}

func (r *taskRepository) UpdateTask(_ context.Context, id int64, userID string, fn storage.UpdateTaskFunc) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[id]
	if !ok || stored.CreatedBy != userID {
		return nil, storage.ErrNotFound
	}

	task := stored.Clone()
	err := fn(task)
	if err != nil {
		return nil, err
	}

	// The owner, the creation time and the ID are not updatable.
	task.ID = stored.ID
	task.CreatedBy = stored.CreatedBy
	task.CreatedAt = stored.CreatedAt

	r.tasks[id] = task.Clone()
	return task, nil
}

func (r *taskRepository) DeleteTask(_ context.Context, id int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok || task.CreatedBy != userID {
		return storage.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}
