package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// UpsertByEmail creates the user on first sign-in or refreshes name/image.
	// The role of an existing user is never changed here.
	UpsertByEmail(ctx context.Context, u *entity.User) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdateName(ctx context.Context, id, name string) (*entity.User, error)
	CountByRole(ctx context.Context) (map[entity.Role]int, error)
}
