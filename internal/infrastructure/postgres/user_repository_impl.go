package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/taskmaster-api/internal/domain/entity"
	"github.com/oksasatya/taskmaster-api/internal/domain/repository"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, avatar_url, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var id uuid.UUID
	u := &entity.User{}
	if err := row.Scan(&id, &u.Name, &u.Email, &u.Password, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.ID = entity.IDFromUUID(id)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID.IsZero() {
		u.ID = entity.NewID()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, u.ID.UUID(), u.Name, u.Email, u.Password, u.AvatarURL)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id entity.ID) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.UUID()))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, avatar_url = $4, updated_at = $5
		WHERE id = $6
	`, u.Name, u.Email, u.Password, u.AvatarURL, u.UpdatedAt, u.ID.UUID())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
