package users

import "context"

// Repo manages persistence of user records. Implementations return
// internal/errors.ErrNotFound when no record matches.
type Repo interface {
	Insert(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Delete(ctx context.Context, id string) error
}
