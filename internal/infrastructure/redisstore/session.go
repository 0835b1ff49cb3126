// Package redisstore keeps sessions and cached views in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

// TokenPair is what a sign-in or refresh hands back to the browser.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// SessionStore issues JWT pairs and keeps one active session per user in the
// hash user:session:<uid>. The hash is the source of the caller's role.
type SessionStore struct {
	rdb *redis.Client
	jwt *helpers.JWTManager
	now func() time.Time
}

func NewSessionStore(rdb *redis.Client, jwt *helpers.JWTManager) *SessionStore {
	return &SessionStore{rdb: rdb, jwt: jwt, now: time.Now}
}

func nowRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *SessionStore) issue(userID string) (TokenPair, string, error) {
	sid := uuid.NewString()
	access, aexp, err := s.jwt.GenerateAccessToken(userID, sid)
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("generate access token: %w", err)
	}
	refresh, rexp, err := s.jwt.GenerateRefreshToken(userID, sid)
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("generate refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, sid, nil
}

// Create starts a new session for u, replacing any previous one.
func (s *SessionStore) Create(ctx context.Context, u *entity.User) (TokenPair, error) {
	pair, sid, err := s.issue(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	key := helpers.SessionKey(u.ID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       string(u.Role),
		"sid":        sid,
		"created_at": nowRFC3339(s.now()),
	})
	pipe.ExpireAt(ctx, key, pair.RefreshTokenExpiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", errs.ErrAuthInfrastructure, err)
	}
	return pair, nil
}

// Resolve maps an access token to the caller's identity. A missing, invalid
// or superseded token yields (nil, nil); only store failures are errors.
func (s *SessionStore) Resolve(ctx context.Context, credential string) (*entity.Identity, error) {
	if credential == "" {
		return nil, nil
	}
	claims, err := s.jwt.ParseAccessToken(credential)
	if err != nil {
		return nil, nil
	}
	data, err := s.rdb.HGetAll(ctx, helpers.SessionKey(claims.UserID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrAuthInfrastructure, err)
	}
	if len(data) == 0 || data["sid"] != claims.SessionID {
		return nil, nil
	}
	id := &entity.Identity{
		UserID: claims.UserID,
		Role:   entity.ParseRole(data["role"]),
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// ErrInvalidRefresh means the refresh token is unusable; the caller must sign in again.
var ErrInvalidRefresh = errors.New("invalid refresh token")

// Rotate swaps the session id and issues a new pair. The old pair stops
// resolving immediately.
func (s *SessionStore) Rotate(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidRefresh
	}
	key := helpers.SessionKey(claims.UserID)
	current, err := s.rdb.HGet(ctx, key, "sid").Result()
	if errors.Is(err, redis.Nil) {
		return TokenPair{}, "", ErrInvalidRefresh
	}
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("%w: %v", errs.ErrAuthInfrastructure, err)
	}
	if current != claims.SessionID {
		return TokenPair{}, "", ErrInvalidRefresh
	}
	pair, sid, err := s.issue(claims.UserID)
	if err != nil {
		return TokenPair{}, "", err
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{"sid": sid, "updated_at": nowRFC3339(s.now())})
	pipe.ExpireAt(ctx, key, pair.RefreshTokenExpiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return TokenPair{}, "", fmt.Errorf("%w: %v", errs.ErrAuthInfrastructure, err)
	}
	return pair, claims.UserID, nil
}

// Touch updates display fields cached in the session, keeping its TTL.
func (s *SessionStore) Touch(ctx context.Context, userID string, fields map[string]any) error {
	key := helpers.SessionKey(userID)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrAuthInfrastructure, err)
	}
	if n == 0 {
		return nil
	}
	values := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["updated_at"] = nowRFC3339(s.now())
	return s.rdb.HSet(ctx, key, values).Err()
}

// Destroy ends the user's session.
func (s *SessionStore) Destroy(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, helpers.SessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrAuthInfrastructure, err)
	}
	return nil
}
