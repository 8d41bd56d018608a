package repository

import (
	"context"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
)

// TaskFilter restricts queries to one owner and, optionally, one status.
type TaskFilter struct {
	Owner  entity.ID
	Status *entity.TaskStatus
}

// TaskRepository defines the task store operations. It never enforces
// ownership on single-record lookups; that is the service's job.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, id entity.ID) (*entity.Task, error)
	Count(ctx context.Context, f TaskFilter) (int64, error)
	// Find returns matching tasks newest first, skipping offset and returning at most limit.
	Find(ctx context.Context, f TaskFilter, offset, limit int) ([]*entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id entity.ID) error
}
