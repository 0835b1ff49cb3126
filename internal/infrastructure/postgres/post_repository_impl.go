package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postWithOwnerSelect = `
	SELECT p.id, p.title, p.details, p.user_id, p.created_at,
	       COALESCE(u.name, ''), u.role
	FROM posts p
	JOIN users u ON u.id = p.user_id`

func scanPostWithOwner(row rowScanner) (entity.PostWithOwner, error) {
	var pw entity.PostWithOwner
	var role string
	if err := row.Scan(&pw.ID, &pw.Title, &pw.Details, &pw.UserID, &pw.CreatedAt, &pw.Owner.Name, &role); err != nil {
		return pw, err
	}
	pw.Owner.ID = pw.UserID
	pw.Owner.Role = entity.ParseRole(role)
	return pw, nil
}

// Create inserts one row; the users foreign key rejects unknown owners.
func (r *PostRepository) Create(ctx context.Context, ownerID string, draft entity.PostDraft) (*entity.Post, error) {
	p := &entity.Post{Title: draft.Title, Details: draft.Details, UserID: ownerID}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, details, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, draft.Title, draft.Details, ownerID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		mapped := mapErr("create post", err)
		if errors.Is(mapped, errs.ErrNotFound) {
			// a malformed owner id cannot reference a user
			mapped = errs.Persistence("create post", errs.ErrOwnerNotFound)
		}
		return nil, mapped
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context) ([]entity.PostWithOwner, error) {
	rows, err := r.pool.Query(ctx, postWithOwnerSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, mapErr("list posts", err)
	}
	return collect(rows, "list posts")
}

func (r *PostRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.PostWithOwner, error) {
	rows, err := r.pool.Query(ctx, postWithOwnerSelect+` WHERE p.user_id = $1 ORDER BY p.created_at DESC, p.id DESC`, ownerID)
	if err != nil {
		return nil, mapErr("list owner posts", err)
	}
	return collect(rows, "list owner posts")
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.PostWithOwner, error) {
	pw, err := scanPostWithOwner(r.pool.QueryRow(ctx, postWithOwnerSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapErr("get post", err)
	}
	return &pw, nil
}

func (r *PostRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM posts`).Scan(&n); err != nil {
		return 0, mapErr("count posts", err)
	}
	return n, nil
}

func collect(rows pgx.Rows, op string) ([]entity.PostWithOwner, error) {
	defer rows.Close()
	out := make([]entity.PostWithOwner, 0)
	for rows.Next() {
		pw, err := scanPostWithOwner(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		out = append(out, pw)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
