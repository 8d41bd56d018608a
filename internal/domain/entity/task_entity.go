package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/taskmaster-api/pkg/validation"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

// Valid reports whether s is one of the enumerated statuses.
func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskCompleted
}

// Toggled returns the opposite status. Unknown values toggle to completed.
func (s TaskStatus) Toggled() TaskStatus {
	if s == TaskCompleted {
		return TaskPending
	}
	return TaskCompleted
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "low"
	PriorityMedium   TaskPriority = "medium"
	PriorityHigh     TaskPriority = "high"
	PriorityCritical TaskPriority = "critical"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

const (
	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 500
)

// Task is a to-do item. Owner is set once at creation and never reassigned.
type Task struct {
	ID          ID           `json:"id"`
	Title       string       `json:"title" validate:"required,max=100"`
	Description string       `json:"description" validate:"max=500"`
	Status      TaskStatus   `json:"status" validate:"taskstatus"`
	Priority    TaskPriority `json:"priority" validate:"taskpriority"`
	DueDate     *time.Time   `json:"dueDate"`
	Owner       ID           `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Normalize trims the free-text fields.
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
}

// ApplyDefaults fills status and priority left empty on creation.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TaskPending
	}
	if t.Priority == "" {
		t.Priority = PriorityLow
	}
}

// Validate checks length and enum constraints. Create and update both call it
// before anything reaches a store.
func (t *Task) Validate() error {
	return validation.Struct(t)
}

// OwnedBy reports whether owner may read or mutate the task.
func (t *Task) OwnedBy(owner ID) bool {
	return t.Owner.Equal(owner)
}
