package application

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/taskmaster-api/internal/domain/apperror"
	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func newTaskService() (*TaskService, *memTasks, *fakeIndexer) {
	tasks := newMemTasks()
	idx := newFakeIndexer()
	return NewTaskService(tasks, idx, nil, DefaultLimit), tasks, idx
}

func seedTasks(t *testing.T, s *TaskService, owner entity.ID, n int, status string) []*entity.Task {
	t.Helper()
	out := make([]*entity.Task, 0, n)
	for i := 0; i < n; i++ {
		task, err := s.Create(context.Background(), CreateTaskInput{Title: fmt.Sprintf("task %d", i), Status: status}, owner)
		require.NoError(t, err)
		out = append(out, task)
	}
	return out
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 4, 1},
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{9, 4, 3},
		{10, 3, 4},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TotalPages(c.total, c.limit), "total=%d limit=%d", c.total, c.limit)
	}
}

func TestOffset_Saturates(t *testing.T) {
	cases := []struct {
		page, limit, want int
	}{
		{1, 4, 0},
		{3, 4, 8},
		{0, 4, 0},
		{2, 0, 0},
		{1<<62 + 1, 3, math.MaxInt},
		{math.MaxInt, math.MaxInt, math.MaxInt},
	}
	for _, c := range cases {
		got := Offset(c.page, c.limit)
		assert.Equal(t, c.want, got, "page=%d limit=%d", c.page, c.limit)
		assert.GreaterOrEqual(t, got, 0)
	}
}

func TestTaskService_Create_DefaultsAndTrim(t *testing.T) {
	s, _, idx := newTaskService()
	owner := entity.NewID()

	task, err := s.Create(context.Background(), CreateTaskInput{Title: "  Buy milk  ", Description: "  2 litres "}, owner)
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2 litres", task.Description)
	assert.Equal(t, entity.TaskPending, task.Status)
	assert.Equal(t, entity.PriorityLow, task.Priority)
	assert.Nil(t, task.DueDate)
	assert.True(t, task.OwnedBy(owner))
	assert.Contains(t, idx.indexed, task.ID.String())
}

func TestTaskService_Create_RejectsBlankTitle(t *testing.T) {
	s, tasks, _ := newTaskService()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := s.Create(context.Background(), CreateTaskInput{Title: title}, entity.NewID())
		require.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		assert.Equal(t, "Task title cannot be empty", err.Error())
	}
	assert.Empty(t, tasks.tasks)
}

func TestTaskService_Create_RejectsInvalidEnumsAndLengths(t *testing.T) {
	s, _, _ := newTaskService()
	owner := entity.NewID()

	_, err := s.Create(context.Background(), CreateTaskInput{Title: "x", Priority: "urgent"}, owner)
	require.True(t, apperror.Is(err, apperror.KindValidation))
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Details, "priority")

	_, err = s.Create(context.Background(), CreateTaskInput{Title: "x", Status: "done"}, owner)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	long := make([]byte, entity.MaxTaskTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = s.Create(context.Background(), CreateTaskInput{Title: string(long)}, owner)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestTaskService_List_IsolatesOwners(t *testing.T) {
	s, _, _ := newTaskService()
	alice, bob := entity.NewID(), entity.NewID()
	seedTasks(t, s, alice, 3, "")
	seedTasks(t, s, bob, 2, "")

	page, err := s.List(context.Background(), alice, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	for _, task := range page.Tasks {
		assert.True(t, task.OwnedBy(alice))
	}
}

func TestTaskService_List_PaginatesNewestFirst(t *testing.T) {
	s, _, _ := newTaskService()
	owner := entity.NewID()
	created := seedTasks(t, s, owner, 9, "")

	page, err := s.List(context.Background(), owner, ListQuery{Page: 1, Limit: 4})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, int64(9), page.Total)
	require.Len(t, page.Tasks, 4)
	assert.True(t, page.Tasks[0].ID.Equal(created[8].ID))

	last, err := s.List(context.Background(), owner, ListQuery{Page: 3, Limit: 4})
	require.NoError(t, err)
	require.Len(t, last.Tasks, 1)
	assert.True(t, last.Tasks[0].ID.Equal(created[0].ID))
}

func TestTaskService_List_OutOfRangePage(t *testing.T) {
	s, _, _ := newTaskService()
	owner := entity.NewID()
	seedTasks(t, s, owner, 5, "")

	cases := []struct {
		name       string
		q          ListQuery
		wantLen    int
		totalPages int
	}{
		{"past last page", ListQuery{Page: 7, Limit: 4}, 0, 2},
		{"huge page", ListQuery{Page: 1<<62 + 1, Limit: 3}, 0, 2},
		{"max page and limit", ListQuery{Page: math.MaxInt, Limit: math.MaxInt}, 0, 1},
		{"huge limit", ListQuery{Page: 1, Limit: 1 << 50}, 5, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			page, err := s.List(context.Background(), owner, c.q)
			require.NoError(t, err)
			assert.NotNil(t, page.Tasks)
			assert.Len(t, page.Tasks, c.wantLen)
			assert.Equal(t, c.q.Page, page.Page)
			assert.Equal(t, c.totalPages, page.TotalPages)
			assert.Equal(t, int64(5), page.Total)
		})
	}
}

func TestTaskService_List_DefaultsAndEmpty(t *testing.T) {
	s, _, _ := newTaskService()

	page, err := s.List(context.Background(), entity.NewID(), ListQuery{Page: -2, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Tasks)
}

func TestTaskService_List_StatusFilter(t *testing.T) {
	s, _, _ := newTaskService()
	owner := entity.NewID()
	seedTasks(t, s, owner, 2, "completed")
	seedTasks(t, s, owner, 3, "pending")

	page, err := s.List(context.Background(), owner, ListQuery{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	for _, task := range page.Tasks {
		assert.Equal(t, entity.TaskCompleted, task.Status)
	}

	page, err = s.List(context.Background(), owner, ListQuery{Status: "archived"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
}

func TestTaskService_List_StoreFailure(t *testing.T) {
	s, tasks, _ := newTaskService()
	tasks.err = errStoreDown

	_, err := s.List(context.Background(), entity.NewID(), ListQuery{})
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.ErrorIs(t, err, errStoreDown)
}

func TestTaskService_GetByID_NotFoundAndForbidden(t *testing.T) {
	s, _, _ := newTaskService()
	alice, bob := entity.NewID(), entity.NewID()
	task := seedTasks(t, s, alice, 1, "")[0]

	got, err := s.GetByID(context.Background(), task.ID.String(), alice)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)

	_, err = s.GetByID(context.Background(), task.ID.String(), bob)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = s.GetByID(context.Background(), entity.NewID().String(), alice)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = s.GetByID(context.Background(), "not-an-id", alice)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestTaskService_Update_AppliesOnlySuppliedFields(t *testing.T) {
	s, _, _ := newTaskService()
	owner := entity.NewID()
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	task, err := s.Create(context.Background(), CreateTaskInput{Title: "Plan trip", Description: "flights", Priority: "high", DueDate: &due}, owner)
	require.NoError(t, err)

	updated, err := s.Update(context.Background(), task.ID.String(), TaskPatch{Title: strPtr("  Plan holiday ")}, owner)
	require.NoError(t, err)
	assert.Equal(t, "Plan holiday", updated.Title)
	assert.Equal(t, "flights", updated.Description)
	assert.Equal(t, entity.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due))

	cleared, err := s.Update(context.Background(), task.ID.String(), TaskPatch{DueDateSet: true}, owner)
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
	assert.True(t, cleared.OwnedBy(owner))
}

func TestTaskService_Update_ValidatesLikeCreate(t *testing.T) {
	s, _, _ := newTaskService()
	owner := entity.NewID()
	task := seedTasks(t, s, owner, 1, "")[0]

	_, err := s.Update(context.Background(), task.ID.String(), TaskPatch{Title: strPtr("   ")}, owner)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = s.Update(context.Background(), task.ID.String(), TaskPatch{Status: strPtr("")}, owner)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = s.Update(context.Background(), task.ID.String(), TaskPatch{Priority: strPtr("urgent")}, owner)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	stored, err := s.GetByID(context.Background(), task.ID.String(), owner)
	require.NoError(t, err)
	assert.Equal(t, task.Title, stored.Title)
	assert.Equal(t, entity.PriorityLow, stored.Priority)
}

func TestTaskService_Update_ForeignTaskForbidden(t *testing.T) {
	s, _, _ := newTaskService()
	alice, bob := entity.NewID(), entity.NewID()
	task := seedTasks(t, s, alice, 1, "")[0]

	_, err := s.Update(context.Background(), task.ID.String(), TaskPatch{Title: strPtr("mine now")}, bob)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = s.Update(context.Background(), entity.NewID().String(), TaskPatch{}, alice)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestTaskService_ToggleTwiceRestoresStatus(t *testing.T) {
	s, _, _ := newTaskService()
	owner := entity.NewID()
	task := seedTasks(t, s, owner, 1, "")[0]

	once, err := s.ToggleStatus(context.Background(), task.ID.String(), owner)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskCompleted, once.Status)

	twice, err := s.ToggleStatus(context.Background(), task.ID.String(), owner)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskPending, twice.Status)

	_, err = s.ToggleStatus(context.Background(), task.ID.String(), entity.NewID())
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestTaskService_Delete(t *testing.T) {
	s, tasks, idx := newTaskService()
	alice, bob := entity.NewID(), entity.NewID()
	task := seedTasks(t, s, alice, 1, "")[0]

	err := s.Delete(context.Background(), task.ID.String(), bob)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	assert.Len(t, tasks.tasks, 1)

	require.NoError(t, s.Delete(context.Background(), task.ID.String(), alice))
	assert.Empty(t, tasks.tasks)
	require.Len(t, idx.deleted, 1)
	assert.True(t, idx.deleted[0].Equal(task.ID))

	err = s.Delete(context.Background(), task.ID.String(), alice)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestTaskService_Stats(t *testing.T) {
	s, _, _ := newTaskService()
	owner := entity.NewID()
	seedTasks(t, s, owner, 2, "completed")
	seedTasks(t, s, owner, 1, "pending")
	seedTasks(t, s, entity.NewID(), 4, "pending")

	stats, err := s.Stats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, TaskStats{Total: 3, Pending: 1, Completed: 2}, *stats)
}

func TestTaskService_Search_FiltersForeignAndStaleHits(t *testing.T) {
	s, _, idx := newTaskService()
	alice, bob := entity.NewID(), entity.NewID()
	mine := seedTasks(t, s, alice, 1, "")[0]
	theirs := seedTasks(t, s, bob, 1, "")[0]
	idx.hits = []entity.ID{theirs.ID, entity.NewID(), mine.ID}

	got, err := s.Search(context.Background(), alice, "task", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].ID.Equal(mine.ID))

	_, err = s.Search(context.Background(), alice, "  ", 5)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestTaskService_IndexFailureDoesNotFailWrite(t *testing.T) {
	s, tasks, idx := newTaskService()
	idx.err = errStoreDown

	task, err := s.Create(context.Background(), CreateTaskInput{Title: "still saved"}, entity.NewID())
	require.NoError(t, err)
	assert.Contains(t, tasks.tasks, task.ID.String())
}
