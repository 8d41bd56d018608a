package repository

import (
	"context"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
)

// UserRepository defines the credential store operations.
// Email lookups expect an address already normalized with entity.NormalizeEmail.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id entity.ID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
