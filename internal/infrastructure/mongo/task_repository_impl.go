package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/internal/domain/repository"
)

type taskDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Status      string     `bson:"status"`
	Priority    string     `bson:"priority"`
	DueDate     *time.Time `bson:"dueDate"`
	CreatedBy   string     `bson:"createdBy"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func taskToDocument(t *entity.Task) taskDocument {
	return taskDocument{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedBy:   t.Owner.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d taskDocument) toEntity() (*entity.Task, error) {
	id, err := entity.ParseID(d.ID)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", d.ID, err)
	}
	owner, err := entity.ParseID(d.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("task %q owner: %w", d.ID, err)
	}
	return &entity.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      entity.TaskStatus(d.Status),
		Priority:    entity.TaskPriority(d.Priority),
		DueDate:     d.DueDate,
		Owner:       owner,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

// taskFilter builds the selector shared by Count and Find.
func taskFilter(f repository.TaskFilter) bson.M {
	filter := bson.M{"createdBy": f.Owner.String()}
	if f.Status != nil {
		filter["status"] = string(*f.Status)
	}
	return filter
}

// newestFirst orders by creation time with _id as the tie breaker so pages never overlap.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	if t.ID.IsZero() {
		t.ID = entity.NewID()
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, taskToDocument(t)); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id entity.ID) (*entity.Task, error) {
	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toEntity()
}

func (r *TaskRepository) Count(ctx context.Context, f repository.TaskFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, taskFilter(f))
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepository) Find(ctx context.Context, f repository.TaskFilter, offset, limit int) ([]*entity.Task, error) {
	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, taskFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*entity.Task, 0, len(docs))
	for _, d := range docs {
		t, err := d.toEntity()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": t.ID.String()}, bson.M{"$set": bson.M{
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"dueDate":     t.DueDate,
		"updatedAt":   t.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id entity.ID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
