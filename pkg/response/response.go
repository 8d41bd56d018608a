package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskmaster-api/internal/domain/apperror"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Success writes a success body. Payload fields are flattened next to
// success, message and requestId.
func Success(ctx *gin.Context, status int, data gin.H, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	body := gin.H{}
	for k, v := range data {
		body[k] = v
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	if rid := ctx.GetString(RequestIDKey); rid != "" {
		body["requestId"] = rid
	}
	ctx.JSON(status, body)
}

// Error aborts the request with a failure body. details is omitted when empty.
func Error(ctx *gin.Context, status int, message string, details map[string]string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	body := gin.H{
		"success": false,
		"message": message,
	}
	if len(details) > 0 {
		body["details"] = details
	}
	if rid := ctx.GetString(RequestIDKey); rid != "" {
		body["requestId"] = rid
	}
	ctx.AbortWithStatusJSON(status, body)
}

// Fail maps err to a failure response. Internal errors are logged and
// answered with a generic message.
func Fail(ctx *gin.Context, err error, logger *logrus.Logger) {
	var ae *apperror.Error
	if errors.As(err, &ae) && ae.Kind != apperror.KindInternal {
		Error(ctx, ae.Status(), ae.Message, ae.Details)
		return
	}
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"request_id": ctx.GetString(RequestIDKey),
			"method":     ctx.Request.Method,
			"path":       ctx.Request.URL.Path,
		}).WithError(err).Error("request failed")
	}
	Error(ctx, http.StatusInternalServerError, "Server Error", nil)
}
