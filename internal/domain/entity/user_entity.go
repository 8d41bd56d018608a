package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/taskmaster-api/pkg/validation"
)

// User is the aggregate root for the credential store.
// Password always holds the bcrypt hash, never the plaintext.
type User struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name" validate:"required,max=50"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"-"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize applies the storage form of name and email.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = NormalizeEmail(u.Email)
}

// Validate checks the name and email constraints. The password is checked on
// its plaintext form by the caller because only the hash is stored here.
func (u *User) Validate() error {
	return validation.Struct(u)
}

// PlainPassword is a password as the user typed it, checked before hashing.
// The length rule counts characters, not bytes.
type PlainPassword struct {
	Password string `json:"password" validate:"pwd"`
}

func (p PlainPassword) Validate() error {
	return validation.Struct(p)
}
