package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"

	msgTokenMissing = "Access denied - authentication token is missing"
)

// TokenResolver verifies a bearer token and returns the user it names.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*entity.User, error)
}

// Auth requires an "Authorization: Bearer <token>" header naming an existing
// user. It sets userID (string) and user (*entity.User) in the Gin context.
func Auth(resolver TokenResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, http.StatusUnauthorized, msgTokenMissing, nil)
			return
		}
		u, err := resolver.ResolveToken(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err, logger)
			return
		}
		c.Set(CtxUserIDKey, u.ID.String())
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentUserID returns the authenticated user's id set by Auth.
func CurrentUserID(c *gin.Context) (entity.ID, bool) {
	if u, ok := c.Get(CtxUserKey); ok {
		if user, ok := u.(*entity.User); ok {
			return user.ID, true
		}
	}
	id, err := entity.ParseID(c.GetString(CtxUserIDKey))
	return id, err == nil
}
