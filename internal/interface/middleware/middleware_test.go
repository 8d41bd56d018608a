package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/taskmaster-api/internal/domain/apperror"
	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
)

func init() { gin.SetMode(gin.TestMode) }

type stubResolver struct {
	users map[string]*entity.User
}

func (s stubResolver) ResolveToken(_ context.Context, token string) (*entity.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, apperror.Unauthorized("Access denied - token verification failed")
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	return body["message"].(string)
}

func TestAuth(t *testing.T) {
	alice := &entity.User{ID: entity.NewID(), Name: "Alice"}
	r := gin.New()
	r.GET("/me", Auth(stubResolver{users: map[string]*entity.User{"good": alice}}, nil), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "Access denied - authentication token is missing"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "Access denied - authentication token is missing"},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "Access denied - authentication token is missing"},
		{"bad token", "Bearer bad", http.StatusUnauthorized, "Access denied - token verification failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(r, req)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.message, message(t, w))
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer good")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, alice.ID.String(), w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	incoming := "3b241101-e2bb-4255-8caf-4136c566a962"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	assert.Equal(t, incoming, serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Body.String())
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRealIPKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "198.51.100.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "198.51.100.2", serve(r, req).Body.String())
}

func TestAllowPrivateIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/debug", RequireAllowed(AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/debug", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.20")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/debug", nil)
	req.Header.Set("X-Forwarded-For", "8.8.8.8")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.POST("/login", RateLimit(rdb, 2, time.Minute, KeyByIP("auth"), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", ip)
		return serve(r, req)
	}

	first := send("203.0.113.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send("203.0.113.1").Code)

	blocked := send("203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("203.0.113.2").Code)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, send("203.0.113.1").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	r := gin.New()
	r.GET("/", RateLimit(rdb, 1, time.Minute, KeyByIP("x"), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestKeyByUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(CtxRealIPKey, "10.0.0.9")
	assert.Equal(t, "rl:tasks:anon:ip:10.0.0.9", KeyByUserID("tasks")(c))

	c.Set(CtxUserIDKey, "u-1")
	assert.Equal(t, "rl:tasks:user:u-1", KeyByUserID("tasks")(c))
}
