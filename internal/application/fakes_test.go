package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	repo "github.com/oksasatya/taskmaster-api/internal/domain/repository"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID.String()] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id entity.ID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id.String()]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID.String()]; !ok {
		return repo.ErrNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[u.ID.String()] = *u
	return nil
}

type memTasks struct {
	mu    sync.Mutex
	tasks map[string]entity.Task
	clock time.Time
	err   error
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: map[string]entity.Task{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memTasks) Create(_ context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	// strictly increasing timestamps keep newest-first ordering deterministic
	m.clock = m.clock.Add(time.Second)
	t.CreatedAt, t.UpdatedAt = m.clock, m.clock
	m.tasks[t.ID.String()] = *t
	return nil
}

func (m *memTasks) GetByID(_ context.Context, id entity.ID) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id.String()]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &t, nil
}

func (m *memTasks) match(f repo.TaskFilter) []entity.Task {
	var out []entity.Task
	for _, t := range m.tasks {
		if !t.Owner.Equal(f.Owner) {
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

func (m *memTasks) Count(_ context.Context, f repo.TaskFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.match(f))), nil
}

func (m *memTasks) Find(_ context.Context, f repo.TaskFilter, offset, limit int) ([]*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.match(f)
	out := []*entity.Task{}
	for i := offset; i >= 0 && i < len(all) && i-offset < limit; i++ {
		t := all[i]
		out = append(out, &t)
	}
	return out, nil
}

func (m *memTasks) Update(_ context.Context, t *entity.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID.String()]; !ok {
		return repo.ErrNotFound
	}
	m.tasks[t.ID.String()] = *t
	return nil
}

func (m *memTasks) Delete(_ context.Context, id entity.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id.String()]; !ok {
		return repo.ErrNotFound
	}
	delete(m.tasks, id.String())
	return nil
}

type fakeIndexer struct {
	indexed map[string]*entity.Task
	deleted []entity.ID
	hits    []entity.ID
	err     error
}

func newFakeIndexer() *fakeIndexer { return &fakeIndexer{indexed: map[string]*entity.Task{}} }

func (f *fakeIndexer) Index(_ context.Context, t *entity.Task) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[t.ID.String()] = t
	return nil
}

func (f *fakeIndexer) Delete(_ context.Context, id entity.ID) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndexer) Search(_ context.Context, _ entity.ID, _ string, size int) ([]entity.ID, error) {
	if len(f.hits) > size {
		return f.hits[:size], f.err
	}
	return f.hits, f.err
}

type fakePublisher struct {
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.jobs = append(p.jobs, body)
	return p.err
}

type fakeAvatars struct {
	path string
	body []byte
	err  error
}

func (a *fakeAvatars) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	b, _ := io.ReadAll(r)
	a.path, a.body = objectPath, b
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}

var errStoreDown = errors.New("store down")
