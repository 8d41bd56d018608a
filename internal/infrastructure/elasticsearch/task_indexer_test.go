package elasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
)

func newTestIndexer(t *testing.T, h http.HandlerFunc) *TaskIndexer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the client checks this header to confirm it talks to Elasticsearch
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewTaskIndexer(client, "tasks")
}

func TestSearchQuery_FiltersByOwner(t *testing.T) {
	owner := entity.NewID()
	b, err := json.Marshal(SearchQuery(owner, "report", 5))
	require.NoError(t, err)

	body := string(b)
	assert.Contains(t, body, `"created_by":"`+owner.String()+`"`)
	assert.Contains(t, body, `"query":"report"`)
	assert.Contains(t, body, `"size":5`)
}

func TestTaskIndexer_Index(t *testing.T) {
	var gotPath string
	var gotDoc taskDoc
	x := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotDoc)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	task := &entity.Task{ID: entity.NewID(), Title: "Write report", Status: entity.TaskPending, Priority: entity.PriorityHigh, Owner: entity.NewID(), CreatedAt: time.Now().UTC()}
	require.NoError(t, x.Index(context.Background(), task))
	assert.Equal(t, "/tasks/_doc/"+task.ID.String(), gotPath)
	assert.Equal(t, "Write report", gotDoc.Title)
	assert.Equal(t, task.Owner.String(), gotDoc.CreatedBy)
}

func TestTaskIndexer_DeleteIgnoresMissing(t *testing.T) {
	x := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	assert.NoError(t, x.Delete(context.Background(), entity.NewID()))
}

func TestTaskIndexer_Search(t *testing.T) {
	a, b := entity.NewID(), entity.NewID()
	x := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/tasks/_search"))
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"` + a.String() + `"},{"_id":"junk"},{"_id":"` + b.String() + `"}]}}`))
	})

	ids, err := x.Search(context.Background(), entity.NewID(), "report", 10)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.True(t, ids[0].Equal(a))
	assert.True(t, ids[1].Equal(b))
}
