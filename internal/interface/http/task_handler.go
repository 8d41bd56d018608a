package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskmaster-api/internal/application"
	"github.com/oksasatya/taskmaster-api/internal/domain/apperror"
	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/internal/interface/middleware"
	"github.com/oksasatya/taskmaster-api/pkg/response"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	DueDate     NullableDate `json:"dueDate"`
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	DueDate     NullableDate `json:"dueDate"`
}

func taskBody(t *entity.Task) gin.H {
	return gin.H{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"dueDate":     t.DueDate,
		"createdBy":   t.Owner,
		"createdAt":   t.CreatedAt,
		"updatedAt":   t.UpdatedAt,
	}
}

// queryInt returns 0 for a missing or malformed value.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func (h *TaskHandler) owner(c *gin.Context) (entity.ID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Fail(c, apperror.Unauthorized("Access denied - authentication token is missing"), h.Logger)
	}
	return id, ok
}

// List GET /api/tasks?page=&limit=&status=
func (h *TaskHandler) List(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	page, err := h.Svc.List(c.Request.Context(), owner, application.ListQuery{
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		Status: c.Query("status"),
	})
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"tasks":      page.Tasks,
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"total":      page.Total,
	}, "")
}

// Stats GET /api/tasks/stats
func (h *TaskHandler) Stats(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	stats, err := h.Svc.Stats(c.Request.Context(), owner)
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"total":     stats.Total,
		"pending":   stats.Pending,
		"completed": stats.Completed,
	}, "")
}

// Search GET /api/tasks/search?q=&size=
func (h *TaskHandler) Search(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	tasks, err := h.Svc.Search(c.Request.Context(), owner, c.Query("q"), queryInt(c, "size"))
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tasks": tasks}, "")
}

// Get GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	t, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, taskBody(t), "")
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), application.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Value,
	}, owner)
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusCreated, taskBody(t), "")
}

// Update PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), c.Param("id"), application.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDateSet:  req.DueDate.Set,
		DueDate:     req.DueDate.Value,
	}, owner)
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, taskBody(t), "")
}

// Toggle PATCH /api/tasks/:id/toggle
func (h *TaskHandler) Toggle(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	t, err := h.Svc.ToggleStatus(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, taskBody(t), "")
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), owner); err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, nil, application.MsgTaskDeleted)
}
