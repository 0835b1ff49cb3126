package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/oidc"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

var (
	// ErrInvalidCredentials covers a rejected or unusable ID token.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailUnverified    = errors.New("email not verified")
)

// Sessions is the session side of sign-in.
type Sessions interface {
	Create(ctx context.Context, u *entity.User) (redisstore.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (redisstore.TokenPair, string, error)
	Touch(ctx context.Context, userID string, fields map[string]any) error
	Destroy(ctx context.Context, userID string) error
}

// AuthService signs users in with an external ID token and manages their session.
type AuthService struct {
	users    repository.UserRepository
	sessions Sessions
	verifier oidc.Verifier
	logger   *logrus.Logger
}

func NewAuthService(users repository.UserRepository, sessions Sessions, verifier oidc.Verifier, logger *logrus.Logger) *AuthService {
	if verifier == nil {
		verifier = oidc.Disabled{}
	}
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &AuthService{users: users, sessions: sessions, verifier: verifier, logger: logger}
}

// SignIn verifies rawIDToken, creates the user on first sign-in with the
// reader role and opens a fresh session.
func (s *AuthService) SignIn(ctx context.Context, rawIDToken string) (*entity.User, redisstore.TokenPair, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return nil, redisstore.TokenPair{}, ErrInvalidCredentials
	}
	claims, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		if errors.Is(err, oidc.ErrProviderDisabled) {
			return nil, redisstore.TokenPair{}, err
		}
		s.logger.WithError(err).Info("id token rejected")
		return nil, redisstore.TokenPair{}, ErrInvalidCredentials
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, redisstore.TokenPair{}, ErrInvalidCredentials
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, redisstore.TokenPair{}, ErrEmailUnverified
	}

	user, err := s.users.UpsertByEmail(ctx, &entity.User{
		Name:  strings.TrimSpace(claims.Name),
		Email: email,
		Role:  entity.RoleReader,
		Image: claims.Picture,
	})
	if err != nil {
		helpers.LogError(s.logger, "upsert user failed", err, logrus.Fields{"email": email})
		return nil, redisstore.TokenPair{}, err
	}
	pair, err := s.sessions.Create(ctx, user)
	if err != nil {
		return nil, redisstore.TokenPair{}, err
	}
	helpers.LogInfo(s.logger, "user signed in", logrus.Fields{"user_id": user.ID, "role": user.Role.String()})
	return user, pair, nil
}

// Refresh rotates the session behind refreshToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (redisstore.TokenPair, error) {
	pair, _, err := s.sessions.Rotate(ctx, refreshToken)
	return pair, err
}

// Logout ends the caller's session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, id *entity.Identity) error {
	if id == nil {
		return nil
	}
	return s.sessions.Destroy(ctx, id.UserID)
}
