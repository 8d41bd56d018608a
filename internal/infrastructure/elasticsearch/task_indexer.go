// Package elasticsearch keeps a searchable copy of tasks.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/pkg/helpers"
)

// TasksMapping is the index mapping created by EnsureIndex.
const TasksMapping = `{
  "mappings": {
    "properties": {
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "status":      {"type": "keyword"},
      "priority":    {"type": "keyword"},
      "created_by":  {"type": "keyword"},
      "due_date":    {"type": "date"},
      "created_at":  {"type": "date"}
    }
  }
}`

const requestTimeout = 3 * time.Second

type TaskIndexer struct {
	client *es.Client
	index  string
}

func NewTaskIndexer(client *es.Client, index string) *TaskIndexer {
	return &TaskIndexer{client: client, index: index}
}

// EnsureIndex creates the tasks index when missing.
func (x *TaskIndexer) EnsureIndex(ctx context.Context) error {
	return helpers.EnsureESIndex(ctx, x.client, x.index, TasksMapping)
}

type taskDoc struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	CreatedBy   string     `json:"created_by"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toDoc(t *entity.Task) taskDoc {
	return taskDoc{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedBy:   t.Owner.String(),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
}

func (x *TaskIndexer) Index(ctx context.Context, t *entity.Task) error {
	b, err := json.Marshal(toDoc(t))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: t.ID.String(), Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index task %s: %s", t.ID, res.Status())
	}
	return nil
}

// Delete removes a task document. A missing document is not an error.
func (x *TaskIndexer) Delete(ctx context.Context, id entity.ID) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id.String()}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete task %s: %s", id, res.Status())
	}
	return nil
}

// SearchQuery builds a multi_match query on title and description restricted
// to one owner.
func SearchQuery(owner entity.ID, q string, size int) map[string]any {
	return map[string]any{
		"size":    size,
		"_source": false,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "description"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"created_by": owner.String()},
				},
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns ids of owner's tasks matching q, best match first.
func (x *TaskIndexer) Search(ctx context.Context, owner entity.ID, q string, size int) ([]entity.ID, error) {
	b, err := json.Marshal(SearchQuery(owner, q, size))
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.client.Search(
		x.client.Search.WithContext(c),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search tasks: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parseHitIDs(parsed), nil
}

func parseHitIDs(r searchResponse) []entity.ID {
	ids := make([]entity.ID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := entity.ParseID(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
