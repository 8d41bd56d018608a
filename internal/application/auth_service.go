package application

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/taskmaster-api/internal/domain/apperror"
	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	repo "github.com/oksasatya/taskmaster-api/internal/domain/repository"
	"github.com/oksasatya/taskmaster-api/pkg/helpers"
	"github.com/oksasatya/taskmaster-api/pkg/mailer"
	mailtpl "github.com/oksasatya/taskmaster-api/pkg/mailer/templates"
	"github.com/oksasatya/taskmaster-api/pkg/validation"
)

const (
	msgRegisterMissing   = "Please provide name, email and password"
	msgLoginMissing      = "Please provide email and password"
	msgEmailRegistered   = "An account with this email already exists"
	msgEmailTaken        = "This email is already associated with another account"
	msgInvalidLogin      = "Invalid email or password"
	msgUserMissing       = "User account not found"
	msgTokenInvalid      = "Access denied - token verification failed"
	msgTokenUserMissing  = "Access denied - user account not found"
	msgAvatarNotImage    = "Avatar must be an image"
	changedPasswordValue = "changed"
)

// JobPublisher queues background jobs such as emails.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AvatarStore persists uploaded images and returns their public URL.
type AvatarStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type AuthService struct {
	Users      repo.UserRepository
	JWT        *helpers.JWTManager
	BcryptCost int
	Mail       JobPublisher
	Avatars    AvatarStore
	AppName    string
	AppURL     string
	Logger     *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, bcryptCost int, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, BcryptCost: bcryptCost, Logger: logger}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// ProfileInput holds the supplied profile fields; nil means unchanged.
type ProfileInput struct {
	Name     *string
	Email    *string
	Password *string
}

// AuthResult is returned by register, login and profile update.
type AuthResult struct {
	ID        entity.ID
	Name      string
	Email     string
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperror.Validation(msgRegisterMissing, nil)
	}

	u := &entity.User{ID: entity.NewID(), Name: in.Name, Email: in.Email}
	u.Normalize()
	if err := s.validateUser(u, &in.Password); err != nil {
		return nil, err
	}

	if _, err := s.Users.GetByEmail(ctx, u.Email); err == nil {
		return nil, apperror.Conflict(msgEmailRegistered)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := helpers.HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.Password = hash

	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict(msgEmailRegistered)
		}
		return nil, apperror.Internal(err)
	}

	s.publish(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewData(s.AppName, u.Name, u.Email, mailtpl.WithAppURL(s.AppURL)),
	})
	return s.issue(u)
}

// Login fails with the same message whether the email or the password is wrong.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := entity.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperror.Validation(msgLoginMissing, nil)
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Unauthorized(msgInvalidLogin)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		return nil, apperror.Unauthorized(msgInvalidLogin)
	}
	return s.issue(u)
}

func (s *AuthService) GetProfile(ctx context.Context, userID entity.ID) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, msgUserMissing)
	}
	return u, nil
}

// UpdateProfile applies the supplied fields and returns a fresh token. Empty
// values count as not supplied.
func (s *AuthService) UpdateProfile(ctx context.Context, userID entity.ID, in ProfileInput) (*AuthResult, error) {
	in.Name = nonBlank(in.Name)
	in.Email = nonBlank(in.Email)
	if in.Password != nil && *in.Password == "" {
		in.Password = nil
	}

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, msgUserMissing)
	}

	changes := map[string]string{}
	if in.Name != nil && strings.TrimSpace(*in.Name) != u.Name {
		u.Name = *in.Name
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := entity.NormalizeEmail(*in.Email)
		if email != u.Email {
			other, err := s.Users.GetByEmail(ctx, email)
			switch {
			case err == nil && !other.ID.Equal(u.ID):
				return nil, apperror.Conflict(msgEmailTaken)
			case err != nil && !errors.Is(err, repo.ErrNotFound):
				return nil, apperror.Internal(err)
			}
			u.Email = email
			changes["email"] = email
		}
	}
	u.Normalize()
	if err := s.validateUser(u, in.Password); err != nil {
		return nil, err
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password, s.BcryptCost)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		u.Password = hash
		changes["password"] = changedPasswordValue
	}

	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict(msgEmailTaken)
		}
		return nil, storeError(err, msgUserMissing)
	}

	if len(changes) > 0 {
		s.publish(ctx, mailer.EmailJob{
			To:       u.Email,
			Template: mailtpl.ProfileUpdated,
			Data: mailtpl.NewData(s.AppName, u.Name, u.Email,
				mailtpl.WithTime(time.Now()),
				mailtpl.WithChanges(changes),
				mailtpl.WithAppURL(s.AppURL),
			),
		})
	}
	return s.issue(u)
}

// UploadAvatar stores an image and saves its URL on the profile.
func (s *AuthService) UploadAvatar(ctx context.Context, userID entity.ID, r io.Reader, filename, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperror.Validation(msgAvatarNotImage, map[string]string{"avatar": "must be an image"})
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "", storeError(err, msgUserMissing)
	}
	if s.Avatars == nil {
		return "", apperror.Internal(errors.New("avatar storage not configured"))
	}

	objectPath := path.Join("avatars", u.ID.String(), uuid.NewString()+strings.ToLower(path.Ext(filename)))
	url, err := s.Avatars.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return "", apperror.Internal(err)
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		return "", storeError(err, msgUserMissing)
	}
	return url, nil
}

// ResolveToken verifies a bearer token and loads the user it names.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.ParseToken(token)
	if err != nil {
		return nil, apperror.Unauthorized(msgTokenInvalid)
	}
	id, err := entity.ParseID(claims.UserID)
	if err != nil {
		return nil, apperror.Unauthorized(msgTokenInvalid)
	}
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Unauthorized(msgTokenUserMissing)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return u, nil
}

// validateUser checks name and email, plus password when one is supplied.
func (s *AuthService) validateUser(u *entity.User, password *string) error {
	details := map[string]string{}
	if err := u.Validate(); err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			return apperror.Internal(err)
		}
		for k, v := range verrs {
			details[k] = v
		}
	}
	if password != nil {
		if err := (entity.PlainPassword{Password: *password}).Validate(); err != nil {
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				return apperror.Internal(err)
			}
			for k, v := range verrs {
				details[k] = v
			}
		}
	}
	if len(details) > 0 {
		return apperror.Validation(msgValidationFailed, details)
	}
	return nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.GenerateToken(u.ID.String())
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID.String()).Error("generate token failed")
		}
		return nil, apperror.Internal(err)
	}
	return &AuthResult{ID: u.ID, Name: u.Name, Email: u.Email, Token: token, ExpiresAt: exp}, nil
}

// publish queues an email. Failures are logged and never fail the request.
func (s *AuthService) publish(ctx context.Context, job mailer.EmailJob) {
	if s.Mail == nil {
		return
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("publish email job failed")
	}
}

func nonBlank(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}
