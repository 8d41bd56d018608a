package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/taskmaster-api/internal/container"
	handlers "github.com/oksasatya/taskmaster-api/internal/interface/http"
)

// TaskModule wires the task routes under /api/tasks. Every route requires a
// bearer token and is rate limited per user.
type TaskModule struct {
	Handler *handlers.TaskHandler
	Guard   gin.HandlerFunc
}

func NewTaskModule(h *handlers.TaskHandler, guard gin.HandlerFunc) *TaskModule {
	return &TaskModule{Handler: h, Guard: guard}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/tasks")
	cfg := container.GetConfig()
	g.Use(m.Guard, userLimiter(cfg, "tasks", cfg.RateLimitTasks))
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/stats", m.Handler.Stats)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id", m.Handler.Update)
		g.PATCH("/:id/toggle", m.Handler.Toggle)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
