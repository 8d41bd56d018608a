package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/taskmaster-api/pkg/response"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

type SystemHandler struct {
	AppName string
}

func NewSystemHandler(appName string) *SystemHandler {
	return &SystemHandler{AppName: appName}
}

// Root GET /
func (h *SystemHandler) Root(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"version": Version}, h.AppName+" API - Server is active")
}

// NotFound answers unmatched routes.
func (h *SystemHandler) NotFound(c *gin.Context) {
	response.Error(c, http.StatusNotFound, "Route "+c.Request.URL.Path+" not found", nil)
}
