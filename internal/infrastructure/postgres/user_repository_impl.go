package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, COALESCE(name, ''), COALESCE(email, ''), role, COALESCE(image, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.Image, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.ParseRole(role)
	return u, nil
}

func (r *UserRepository) UpsertByEmail(ctx context.Context, u *entity.User) (*entity.User, error) {
	role := u.Role
	if !role.Valid() {
		role = entity.RoleReader
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, role, image)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, NULLIF($4, ''))
		ON CONFLICT (email) DO UPDATE
		SET name = COALESCE(EXCLUDED.name, users.name),
		    image = COALESCE(EXCLUDED.image, users.image)
		RETURNING `+userColumns,
		u.Name, u.Email, string(role), u.Image)
	out, err := scanUser(row)
	if err != nil {
		return nil, mapErr("upsert user", err)
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr("get user", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateName(ctx context.Context, id, name string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET name = $1
		WHERE id = $2
		RETURNING `+userColumns, name, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr("update user name", err)
	}
	return u, nil
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[entity.Role]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, mapErr("count users", err)
	}
	defer rows.Close()

	out := make(map[entity.Role]int, len(entity.Roles))
	for _, role := range entity.Roles {
		out[role] = 0
	}
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, mapErr("count users", err)
		}
		out[entity.ParseRole(role)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("count users", err)
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
