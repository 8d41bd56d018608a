package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskmaster-api/internal/application"
	"github.com/oksasatya/taskmaster-api/internal/domain/apperror"
	"github.com/oksasatya/taskmaster-api/internal/interface/middleware"
	"github.com/oksasatya/taskmaster-api/pkg/response"
)

const maxAvatarBytes = 5 << 20

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func authBody(r *application.AuthResult) gin.H {
	return gin.H{
		"id":    r.ID,
		"name":  r.Name,
		"email": r.Email,
		"token": r.Token,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusCreated, authBody(res), "")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), application.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, authBody(res), "")
}

// GetProfile GET /api/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Fail(c, apperror.Unauthorized("Access denied - authentication token is missing"), h.Logger)
		return
	}
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"avatarUrl": u.AvatarURL,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}, "")
}

// UpdateProfile PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Fail(c, apperror.Unauthorized("Access denied - authentication token is missing"), h.Logger)
		return
	}
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.ProfileInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, authBody(res), "")
}

// UploadAvatar POST /api/auth/avatar (multipart field "avatar")
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Fail(c, apperror.Unauthorized("Access denied - authentication token is missing"), h.Logger)
		return
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Please select an image to upload", map[string]string{"avatar": "is required"})
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error(c, http.StatusBadRequest, "Avatar must be 5MB or smaller", map[string]string{"avatar": "too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, apperror.Internal(err), h.Logger)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), uid, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Fail(c, err, h.Logger)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatarUrl": url}, "Avatar updated")
}
