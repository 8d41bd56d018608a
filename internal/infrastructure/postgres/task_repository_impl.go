package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/internal/domain/repository"
)

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, status, priority, due_date, created_by, created_at, updated_at`

func scanTask(row pgx.Row) (*entity.Task, error) {
	var (
		id, owner        uuid.UUID
		status, priority string
	)
	t := &entity.Task{}
	if err := row.Scan(&id, &t.Title, &t.Description, &status, &priority, &t.DueDate, &owner, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = entity.IDFromUUID(id)
	t.Owner = entity.IDFromUUID(owner)
	t.Status = entity.TaskStatus(status)
	t.Priority = entity.TaskPriority(priority)
	return t, nil
}

// whereClause renders the filter starting at placeholder $1.
func whereClause(f repository.TaskFilter) (string, []any) {
	clause := "created_by = $1"
	args := []any{f.Owner.UUID()}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		clause += " AND status = $" + strconv.Itoa(len(args))
	}
	return clause, args
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	if t.ID.IsZero() {
		t.ID = entity.NewID()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, t.ID.UUID(), t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.Owner.UUID())

	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id entity.ID) (*entity.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id.UUID()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Count(ctx context.Context, f repository.TaskFilter) (int64, error) {
	where, args := whereClause(f)
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

// maxPrealloc caps the slice capacity reserved from a client-supplied limit.
const maxPrealloc = 64

func (r *TaskRepository) Find(ctx context.Context, f repository.TaskFilter, offset, limit int) ([]*entity.Task, error) {
	where, args := whereClause(f)
	args = append(args, limit, offset)
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*entity.Task, 0, min(limit, maxPrealloc))
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update writes every mutable column. created_by is never touched.
func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	t.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, updated_at = $6
		WHERE id = $7
	`, t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.UpdatedAt, t.ID.UUID())
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id entity.ID) error {
	res, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id.UUID())
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
