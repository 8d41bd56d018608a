package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/internal/domain/repository"
)

func TestTaskFilter(t *testing.T) {
	owner := entity.NewID()

	assert.Equal(t, bson.M{"createdBy": owner.String()}, taskFilter(repository.TaskFilter{Owner: owner}))

	pending := entity.TaskPending
	assert.Equal(t,
		bson.M{"createdBy": owner.String(), "status": "pending"},
		taskFilter(repository.TaskFilter{Owner: owner, Status: &pending}),
	)
}

func TestTaskDocument_PreservesOwnerAndDueDate(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	task := &entity.Task{
		ID:       entity.NewID(),
		Title:    "Buy milk",
		Status:   entity.TaskPending,
		Priority: entity.PriorityHigh,
		DueDate:  &due,
		Owner:    entity.NewID(),
	}

	got, err := taskToDocument(task).toEntity()
	require.NoError(t, err)
	assert.True(t, got.ID.Equal(task.ID))
	assert.True(t, got.OwnedBy(task.Owner))
	assert.Equal(t, entity.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
}

func TestTaskDocument_RejectsCorruptOwner(t *testing.T) {
	doc := taskDocument{ID: entity.NewID().String(), CreatedBy: "not-an-id"}
	_, err := doc.toEntity()
	assert.Error(t, err)
}

func TestUserDocument_KeepsHash(t *testing.T) {
	u := &entity.User{ID: entity.NewID(), Name: "Ann", Email: "ann@example.com", Password: "$2a$12$hash"}
	got, err := userToDocument(u).toEntity()
	require.NoError(t, err)
	assert.Equal(t, u.Password, got.Password)
	assert.True(t, got.ID.Equal(u.ID))
}
