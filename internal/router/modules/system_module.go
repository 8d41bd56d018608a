package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/taskmaster-api/internal/interface/http"
)

// SystemModule serves the root status endpoint and the JSON 404.
type SystemModule struct {
	Handler *handlers.SystemHandler
}

func NewSystemModule(h *handlers.SystemHandler) *SystemModule {
	return &SystemModule{Handler: h}
}

func (m *SystemModule) RegisterRoot(e *gin.Engine) {
	e.GET("/", m.Handler.Root)
	e.NoRoute(m.Handler.NotFound)
}

func (m *SystemModule) Register(*gin.RouterGroup) {}
