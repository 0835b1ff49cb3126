package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-blog/config"
	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	pginfra "github.com/oksasatya/go-ddd-blog/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

// seed creates one user per role and a welcome post. Roles are assigned here
// directly because the service never changes them.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)

	seeded := map[entity.Role]*entity.User{}
	for _, role := range entity.Roles {
		u, err := users.UpsertByEmail(ctx, &entity.User{
			Email: "demo-" + string(role) + "@example.com",
			Name:  "Demo " + role.Title(),
		})
		if err != nil {
			log.Fatalf("failed to seed %s: %v", role, err)
		}
		if _, err := pool.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, u.ID, string(role)); err != nil {
			log.Fatalf("failed to set role for %s: %v", u.Email, err)
		}
		u.Role = role
		seeded[role] = u
		logger.WithField("id", u.ID).WithField("email", u.Email).WithField("role", role.String()).Info("seeded user")
	}

	n, err := posts.Count(ctx)
	if err != nil {
		log.Fatalf("failed to count posts: %v", err)
	}
	if n > 0 {
		logger.WithField("posts", n).Info("posts already present; skipping welcome post")
		return
	}
	p, err := posts.Create(ctx, seeded[entity.RoleContributor].ID, entity.PostDraft{
		Title:   "Welcome",
		Details: "This is the first post. Contributors and admins can publish more.",
	})
	if err != nil {
		log.Fatalf("failed to seed post: %v", err)
	}
	logger.WithField("id", p.ID).Info("seeded welcome post")
}
