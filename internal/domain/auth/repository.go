package auth

import (
	"context"
	"errors"
)

// ErrUserNotFound is reported by repositories when no row matches.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is reported when registration collides with an
// existing account.
var ErrEmailExists = errors.New("email already registered")

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}
