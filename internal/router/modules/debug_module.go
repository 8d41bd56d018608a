package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/taskmaster-api/internal/interface/middleware"
)

type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

// Register exposes expvar metrics to loopback and private network clients only.
func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", middleware.RequireAllowed(middleware.AllowPrivateIP()), gin.WrapH(expvar.Handler()))
}
