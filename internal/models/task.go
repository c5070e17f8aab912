package models

import "time"

const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusBlocked    = "BLOCKED"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// Task is a personal todo item. CreatedBy holds the owner's user ID
// and never changes after the task is created.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	AssignedTo  *string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		dueDate := *t.DueDate
		c.DueDate = &dueDate
	}
	if t.AssignedTo != nil {
		assignedTo := *t.AssignedTo
		c.AssignedTo = &assignedTo
	}
	return &c
}
