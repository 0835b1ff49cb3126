package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
)

// PostRepository persists posts. Every method is a single-statement unit of work.
type PostRepository interface {
	Create(ctx context.Context, ownerID string, draft entity.PostDraft) (*entity.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]entity.PostWithOwner, error)
	ListByOwner(ctx context.Context, ownerID string) ([]entity.PostWithOwner, error)
	GetByID(ctx context.Context, id string) (*entity.PostWithOwner, error)
	Count(ctx context.Context) (int, error)
}
