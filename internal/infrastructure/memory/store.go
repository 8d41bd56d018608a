// Package memory provides process-local repositories for development and tests.
// Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[entity.ID]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[entity.ID]entity.User{}}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id entity.ID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, x := range r.users {
		if id != u.ID && x.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return nil
}

type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[entity.ID]entity.Task
	last  time.Time
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: map[entity.ID]entity.Task{}}
}

// now never repeats so newest-first order is total.
func (r *TaskRepository) now() time.Time {
	t := time.Now().UTC()
	if !t.After(r.last) {
		t = r.last.Add(time.Microsecond)
	}
	r.last = t
	return t
}

func (r *TaskRepository) Create(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) GetByID(_ context.Context, id entity.ID) (*entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TaskRepository) match(f repository.TaskFilter) []entity.Task {
	out := make([]entity.Task, 0)
	for _, t := range r.tasks {
		if !t.OwnedBy(f.Owner) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out
}

func (r *TaskRepository) Count(_ context.Context, f repository.TaskFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.match(f))), nil
}

func (r *TaskRepository) Find(_ context.Context, f repository.TaskFilter, offset, limit int) ([]*entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.match(f)
	out := []*entity.Task{}
	if offset < 0 || offset >= len(all) || limit <= 0 {
		return out, nil
	}
	n := min(len(all)-offset, limit)
	for i := offset; i < offset+n; i++ {
		t := all[i]
		out = append(out, &t)
	}
	return out, nil
}

func (r *TaskRepository) Update(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	t.Owner = old.Owner
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = r.now()
	r.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id entity.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}
