package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/taskmaster-api/config"
	"github.com/oksasatya/taskmaster-api/internal/container"
	handlers "github.com/oksasatya/taskmaster-api/internal/interface/http"
	"github.com/oksasatya/taskmaster-api/internal/interface/middleware"
)

// AuthModule wires account routes under /api/auth.
// Public: POST /register, POST /login (rate limited per IP)
// Protected: GET/PUT /profile, POST /avatar
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, guard gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Guard: guard}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	cfg := container.GetConfig()
	g := rg.Group("/auth")

	limiter := ipLimiter(cfg, "auth")
	g.POST("/register", limiter, m.Handler.Register)
	g.POST("/login", limiter, m.Handler.Login)

	auth := g.Group("/")
	auth.Use(m.Guard, userLimiter(cfg, "profile", cfg.RateLimitProfile))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/avatar", m.Handler.UploadAvatar)
	}
}

func ipLimiter(cfg *config.Config, bucket string) gin.HandlerFunc {
	if !cfg.RateLimitEnabled {
		return passThrough
	}
	return middleware.RateLimit(container.GetRedis(), cfg.RateLimitAuth, cfg.RateLimitWindow, middleware.KeyByIP(bucket), nil)
}

func userLimiter(cfg *config.Config, bucket string, max int) gin.HandlerFunc {
	if !cfg.RateLimitEnabled {
		return passThrough
	}
	return middleware.RateLimit(container.GetRedis(), max, cfg.RateLimitWindow, middleware.KeyByUserID(bucket), nil)
}

func passThrough(c *gin.Context) { c.Next() }
