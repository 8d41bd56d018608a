package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskmaster-api/internal/domain/apperror"
	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	repo "github.com/oksasatya/taskmaster-api/internal/domain/repository"
	"github.com/oksasatya/taskmaster-api/pkg/validation"
)

const (
	msgTitleRequired = "Task title cannot be empty"

	msgTaskMissing    = "Requested task does not exist"
	msgTaskForbidden  = "You do not have permission to access this task"
	msgUpdateMissing  = "Cannot update - task not found"
	msgUpdateDenied   = "You are not authorized to modify this task"
	msgDeleteMissing  = "Cannot delete - task not found"
	msgDeleteDenied   = "You are not authorized to remove this task"
	MsgTaskDeleted    = "Task has been permanently removed"
	maxSearchResults  = 50
	defaultSearchSize = 10
)

// TaskIndexer keeps a full-text copy of tasks. Search returns matching task
// ids for owner, best match first.
type TaskIndexer interface {
	Index(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id entity.ID) error
	Search(ctx context.Context, owner entity.ID, q string, size int) ([]entity.ID, error)
}

type TaskService struct {
	Repo         repo.TaskRepository
	Indexer      TaskIndexer
	Logger       *logrus.Logger
	DefaultLimit int
}

func NewTaskService(r repo.TaskRepository, indexer TaskIndexer, logger *logrus.Logger, defaultLimit int) *TaskService {
	return &TaskService{Repo: r, Indexer: indexer, Logger: logger, DefaultLimit: defaultLimit}
}

// TaskPage is one page of a caller's tasks.
type TaskPage struct {
	Tasks      []*entity.Task
	Page       int
	TotalPages int
	Total      int64
}

type TaskStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Completed int64 `json:"completed"`
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// TaskPatch holds the fields supplied by an update. Nil pointers are left
// untouched. DueDateSet distinguishes an explicit null from an absent field.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDateSet  bool
	DueDate     *time.Time
}

// List returns one page of owner's tasks, newest first.
func (s *TaskService) List(ctx context.Context, owner entity.ID, q ListQuery) (*TaskPage, error) {
	page, limit := normalizePaging(q.Page, q.Limit, s.DefaultLimit)

	f := repo.TaskFilter{Owner: owner}
	if st := entity.TaskStatus(q.Status); st.Valid() {
		f.Status = &st
	}

	total, err := s.Repo.Count(ctx, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	tasks := []*entity.Task{}
	if offset := Offset(page, limit); int64(offset) < total {
		tasks, err = s.Repo.Find(ctx, f, offset, limit)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if tasks == nil {
			tasks = []*entity.Task{}
		}
	}
	return &TaskPage{Tasks: tasks, Page: page, TotalPages: TotalPages(total, limit), Total: total}, nil
}

// GetByID returns the task when owner may see it.
func (s *TaskService) GetByID(ctx context.Context, taskID string, owner entity.ID) (*entity.Task, error) {
	return s.owned(ctx, taskID, owner, msgTaskMissing, msgTaskForbidden)
}

// owned fetches a task then checks its owner, so a missing task and a foreign
// task produce different errors.
func (s *TaskService) owned(ctx context.Context, taskID string, owner entity.ID, missing, denied string) (*entity.Task, error) {
	id, err := entity.ParseID(taskID)
	if err != nil {
		return nil, apperror.NotFound(missing)
	}
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, missing)
	}
	if !t.OwnedBy(owner) {
		return nil, apperror.Forbidden(denied)
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, owner entity.ID) (*entity.Task, error) {
	t := &entity.Task{
		ID:          entity.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      entity.TaskStatus(strings.TrimSpace(in.Status)),
		Priority:    entity.TaskPriority(strings.TrimSpace(in.Priority)),
		DueDate:     in.DueDate,
		Owner:       owner,
	}
	t.Normalize()
	t.ApplyDefaults()
	if err := validateTask(t); err != nil {
		return nil, err
	}

	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, apperror.Internal(err)
	}
	s.index(ctx, t)
	return t, nil
}

// Update applies the supplied fields and runs the same validation as Create.
func (s *TaskService) Update(ctx context.Context, taskID string, p TaskPatch, owner entity.ID) (*entity.Task, error) {
	t, err := s.owned(ctx, taskID, owner, msgUpdateMissing, msgUpdateDenied)
	if err != nil {
		return nil, err
	}

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = entity.TaskStatus(strings.TrimSpace(*p.Status))
	}
	if p.Priority != nil {
		t.Priority = entity.TaskPriority(strings.TrimSpace(*p.Priority))
	}
	if p.DueDateSet {
		t.DueDate = p.DueDate
	}
	t.Normalize()
	if err := validateTask(t); err != nil {
		return nil, err
	}

	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, storeError(err, msgUpdateMissing)
	}
	s.index(ctx, t)
	return t, nil
}

// ToggleStatus flips pending and completed.
func (s *TaskService) ToggleStatus(ctx context.Context, taskID string, owner entity.ID) (*entity.Task, error) {
	t, err := s.owned(ctx, taskID, owner, msgUpdateMissing, msgUpdateDenied)
	if err != nil {
		return nil, err
	}
	next := string(t.Status.Toggled())
	return s.Update(ctx, taskID, TaskPatch{Status: &next}, owner)
}

// Delete removes the task permanently.
func (s *TaskService) Delete(ctx context.Context, taskID string, owner entity.ID) error {
	t, err := s.owned(ctx, taskID, owner, msgDeleteMissing, msgDeleteDenied)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, t.ID); err != nil {
		return storeError(err, msgDeleteMissing)
	}
	if s.Indexer != nil {
		if err := s.Indexer.Delete(ctx, t.ID); err != nil {
			s.warn(err, t.ID, "task index delete failed")
		}
	}
	return nil
}

// Stats counts owner's tasks in total and per status.
func (s *TaskService) Stats(ctx context.Context, owner entity.ID) (*TaskStats, error) {
	total, err := s.Repo.Count(ctx, repo.TaskFilter{Owner: owner})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	pending := entity.TaskPending
	p, err := s.Repo.Count(ctx, repo.TaskFilter{Owner: owner, Status: &pending})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	completed := entity.TaskCompleted
	c, err := s.Repo.Count(ctx, repo.TaskFilter{Owner: owner, Status: &completed})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &TaskStats{Total: total, Pending: p, Completed: c}, nil
}

// Search runs a full-text query over owner's tasks. Hits are reloaded from
// the store so stale index entries and foreign tasks never surface.
func (s *TaskService) Search(ctx context.Context, owner entity.ID, q string, size int) ([]*entity.Task, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Search query is required", map[string]string{"q": "is required"})
	}
	if size <= 0 || size > maxSearchResults {
		size = defaultSearchSize
	}
	out := []*entity.Task{}
	if s.Indexer == nil {
		return out, nil
	}

	ids, err := s.Indexer.Search(ctx, owner, q, size)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for _, id := range ids {
		t, err := s.Repo.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if t.OwnedBy(owner) {
			out = append(out, t)
		}
	}
	return out, nil
}

func validateTask(t *entity.Task) error {
	err := t.Validate()
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) && verrs["title"] == "is required" {
		return apperror.Validation(msgTitleRequired, verrs)
	}
	return invalid(err, msgValidationFailed)
}

func (s *TaskService) index(ctx context.Context, t *entity.Task) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.Index(ctx, t); err != nil {
		s.warn(err, t.ID, "task index failed")
	}
}

func (s *TaskService) warn(err error, id entity.ID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("task_id", id.String()).Warn(msg)
	}
}
