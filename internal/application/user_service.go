package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/domain/policy"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

// UserService serves profiles and the caller's own settings.
type UserService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	sessions Sessions
	logger   *logrus.Logger
}

func NewUserService(users repository.UserRepository, posts repository.PostRepository, sessions Sessions, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &UserService{users: users, posts: posts, sessions: sessions, logger: logger}
}

// PublicProfile returns the publicly visible part of any user.
func (s *UserService) PublicProfile(ctx context.Context, userID string) (entity.PublicProfile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return entity.PublicProfile{}, errs.Persistence("get user", err)
	}
	return u.Public(), nil
}

// Profile returns the caller's own record.
func (s *UserService) Profile(ctx context.Context, id *entity.Identity) (*entity.User, error) {
	if err := checkAccess(id, policy.ActionUpdateOwnProfile); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, errs.Persistence("get profile", err)
	}
	return u, nil
}

// UpdateProfile renames the caller and refreshes the name held in the session.
func (s *UserService) UpdateProfile(ctx context.Context, id *entity.Identity, in UpdateProfileInput) (*entity.User, error) {
	name, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	if err := checkAccess(id, policy.ActionUpdateOwnProfile); err != nil {
		return nil, err
	}
	u, err := s.users.UpdateName(ctx, id.UserID, name)
	if err != nil {
		return nil, errs.Persistence("update profile", err)
	}
	if s.sessions != nil {
		if err := s.sessions.Touch(ctx, id.UserID, map[string]any{"name": u.Name}); err != nil {
			s.logger.WithError(err).WithField("user_id", id.UserID).Warn("session refresh after rename failed")
		}
	}
	return u, nil
}

// AdminStats summarizes the site for the admin dashboard.
type AdminStats struct {
	Posts int            `json:"posts"`
	Users map[string]int `json:"users"`
}

// AdminDashboard is reachable by admins only.
func (s *UserService) AdminDashboard(ctx context.Context, id *entity.Identity) (*AdminStats, error) {
	if err := checkAccess(id, policy.ActionViewAdminDashboard); err != nil {
		return nil, err
	}
	n, err := s.posts.Count(ctx)
	if err != nil {
		return nil, errs.Persistence("count posts", err)
	}
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, errs.Persistence("count users", err)
	}
	stats := &AdminStats{Posts: n, Users: make(map[string]int, len(entity.Roles))}
	for _, r := range entity.Roles {
		stats.Users[r.String()] = byRole[r]
	}
	return stats, nil
}
