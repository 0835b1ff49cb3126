// Package memory provides in-process repositories with the same contract as
// the Postgres ones. Used by tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

// Store holds users and posts behind one lock so the owner check and the
// insert are atomic, like the foreign key in Postgres.
type Store struct {
	mu    sync.RWMutex
	users map[string]*entity.User
	posts map[string]*entity.Post
	// seq breaks created_at ties in insertion order
	seq   map[string]int64
	next  int64
	clock func() time.Time
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*entity.User),
		posts: make(map[string]*entity.Post),
		seq:   make(map[string]int64),
		clock: time.Now,
	}
}

// WithClock replaces the time source; tests use it to force ordering.
func (s *Store) WithClock(fn func() time.Time) *Store {
	s.clock = fn
	return s
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }
func (s *Store) Posts() *PostRepository { return &PostRepository{s: s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) UpsertByEmail(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.Email != "" {
		for _, existing := range r.s.users {
			if strings.EqualFold(existing.Email, u.Email) {
				if u.Name != "" {
					existing.Name = u.Name
				}
				if u.Image != "" {
					existing.Image = u.Image
				}
				cp := *existing
				return &cp, nil
			}
		}
	}
	nu := *u
	if nu.ID == "" {
		nu.ID = uuid.NewString()
	}
	if !nu.Role.Valid() {
		nu.Role = entity.RoleReader
	}
	if nu.CreatedAt.IsZero() {
		nu.CreatedAt = r.s.clock().UTC()
	}
	r.s.users[nu.ID] = &nu
	cp := nu
	return &cp, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) UpdateName(ctx context.Context, id, name string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	u.Name = name
	cp := *u
	return &cp, nil
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[entity.Role]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[entity.Role]int, len(entity.Roles))
	for _, role := range entity.Roles {
		out[role] = 0
	}
	for _, u := range r.s.users {
		out[u.Role]++
	}
	return out, nil
}

// SetRole is the out-of-band role change used by seeding and tests.
func (r *UserRepository) SetRole(id string, role entity.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.Role = role
	return nil
}

type PostRepository struct{ s *Store }

func (r *PostRepository) Create(ctx context.Context, ownerID string, draft entity.PostDraft) (*entity.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Persistence("create post", err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[ownerID]; !ok {
		return nil, errs.Persistence("create post", errs.ErrOwnerNotFound)
	}
	p := &entity.Post{
		ID:        uuid.NewString(),
		Title:     draft.Title,
		Details:   draft.Details,
		UserID:    ownerID,
		CreatedAt: r.s.clock().UTC(),
	}
	r.s.posts[p.ID] = p
	r.s.next++
	r.s.seq[p.ID] = r.s.next
	cp := *p
	return &cp, nil
}

func (r *PostRepository) List(ctx context.Context) ([]entity.PostWithOwner, error) {
	return r.list(ctx, func(*entity.Post) bool { return true })
}

func (r *PostRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.PostWithOwner, error) {
	return r.list(ctx, func(p *entity.Post) bool { return p.UserID == ownerID })
}

func (r *PostRepository) list(ctx context.Context, keep func(*entity.Post) bool) ([]entity.PostWithOwner, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Persistence("list posts", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.PostWithOwner, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, r.withOwner(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return r.s.seq[a.ID] > r.s.seq[b.ID]
	})
	return out, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.PostWithOwner, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Persistence("get post", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	pw := r.withOwner(p)
	return &pw, nil
}

func (r *PostRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.Persistence("count posts", err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.posts), nil
}

// caller holds the lock
func (r *PostRepository) withOwner(p *entity.Post) entity.PostWithOwner {
	pw := entity.PostWithOwner{Post: *p, Owner: entity.Owner{ID: p.UserID}}
	if u, ok := r.s.users[p.UserID]; ok {
		pw.Owner.Name = u.Name
		pw.Owner.Role = u.Role
	}
	return pw
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.PostRepository = (*PostRepository)(nil)
)
