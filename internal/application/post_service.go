package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/domain/event"
	"github.com/oksasatya/go-ddd-blog/internal/domain/policy"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	"github.com/oksasatya/go-ddd-blog/pkg/metrics"
)

// PostSearcher runs full-text queries over posts.
type PostSearcher interface {
	Search(ctx context.Context, q string, size int) ([]search.Hit, error)
}

// PostService owns the authoring flow and the public post reads.
type PostService struct {
	posts  repository.PostRepository
	bus    *event.Bus
	cache  *redisstore.ViewCache
	search PostSearcher
	logger *logrus.Logger
}

func NewPostService(posts repository.PostRepository, bus *event.Bus, cache *redisstore.ViewCache, searcher PostSearcher, logger *logrus.Logger) *PostService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &PostService{posts: posts, bus: bus, cache: cache, search: searcher, logger: logger}
}

// PostDetail is a single post with its owner and a relative age.
type PostDetail struct {
	entity.PostWithOwner
	CreatedAgo string `json:"created_ago"`
}

// CreatePost validates the input, checks the caller may author, persists the
// post and then signals dependents. Nothing is written unless every check
// passes. Once the row is committed a failing subscriber is logged only.
func (s *PostService) CreatePost(ctx context.Context, id *entity.Identity, in CreatePostInput) (*entity.Post, error) {
	draft, err := in.Normalize()
	if err != nil {
		metrics.AuthoringRejected.WithLabelValues("validation").Inc()
		return nil, err
	}
	if id == nil {
		metrics.AuthoringRejected.WithLabelValues("unauthenticated").Inc()
		return nil, errs.ErrAuthenticationAbsent
	}
	if !policy.Authorize(id.Role, policy.ActionCreatePost).Allowed() {
		metrics.AuthoringRejected.WithLabelValues("forbidden").Inc()
		s.logger.WithFields(logrus.Fields{"user_id": id.UserID, "role": id.Role.String()}).Info("create post denied")
		return nil, errs.ErrAuthorizationDenied
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, id.UserID, draft)
	if err != nil {
		helpers.LogError(s.logger, "create post failed", err, logrus.Fields{"user_id": id.UserID})
		return nil, errs.Persistence("create post", err)
	}
	metrics.PostsCreated.Inc()

	// the write is committed; dependents still run if the client went away
	pubCtx := context.WithoutCancel(ctx)
	ev := event.PostCreated{PostID: post.ID, OwnerID: post.UserID, Title: post.Title, CreatedAt: post.CreatedAt}
	if err := s.bus.PublishPostCreated(pubCtx, ev); err != nil {
		s.reportSubscriberErrors(err, post.ID)
	}
	return post, nil
}

func (s *PostService) reportSubscriberErrors(err error, postID string) {
	var list []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		list = joined.Unwrap()
	} else {
		list = []error{err}
	}
	for _, e := range list {
		name := "unknown"
		var se *event.SubscriberError
		if errors.As(e, &se) {
			name = se.Subscriber
		}
		metrics.EventSubscriberFailures.WithLabelValues(name).Inc()
		s.logger.WithError(e).WithFields(logrus.Fields{"post_id": postID, "subscriber": name}).Warn("post created subscriber failed")
	}
}

// ListPosts returns every post, newest first, through the view cache.
func (s *PostService) ListPosts(ctx context.Context) ([]entity.PostWithOwner, error) {
	list, err := redisstore.ReadThrough(ctx, s.cache, redisstore.ViewPostList, s.posts.List)
	if err != nil {
		return nil, errs.Persistence("list posts", err)
	}
	if list == nil {
		list = []entity.PostWithOwner{}
	}
	return list, nil
}

// GetPost returns one post with its owner and age relative to now.
func (s *PostService) GetPost(ctx context.Context, postID string, now time.Time) (*PostDetail, error) {
	pw, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, errs.Persistence("get post", err)
	}
	return &PostDetail{PostWithOwner: *pw, CreatedAgo: helpers.HumanizeSince(pw.CreatedAt, now)}, nil
}

// ListOwnPosts returns the caller's posts; it backs the contributor dashboard.
func (s *PostService) ListOwnPosts(ctx context.Context, id *entity.Identity) ([]entity.PostWithOwner, error) {
	if err := checkAccess(id, policy.ActionViewContributorDashboard); err != nil {
		return nil, err
	}
	load := func(ctx context.Context) ([]entity.PostWithOwner, error) {
		return s.posts.ListByOwner(ctx, id.UserID)
	}
	list, err := redisstore.ReadThrough(ctx, s.cache, redisstore.ViewOwnerPosts(id.UserID), load)
	if err != nil {
		return nil, errs.Persistence("list own posts", err)
	}
	if list == nil {
		list = []entity.PostWithOwner{}
	}
	return list, nil
}

// SearchPosts runs a full-text query. An unconfigured index yields no hits.
func (s *PostService) SearchPosts(ctx context.Context, q string, size int) ([]search.Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, &errs.ValidationError{Fields: map[string]string{"q": "Query cannot be empty"}}
	}
	if s.search == nil {
		return []search.Hit{}, nil
	}
	hits, err := s.search.Search(ctx, q, size)
	if err != nil {
		helpers.LogError(s.logger, "post search failed", err, logrus.Fields{"q": q})
		return nil, err
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	return hits, nil
}

// checkAccess reports the error a caller gets for action: absent identity is
// unauthenticated, a known caller without the grant is denied.
func checkAccess(id *entity.Identity, action policy.Action) error {
	if policy.Authorize(entity.RoleOf(id), action).Allowed() {
		return nil
	}
	if id == nil {
		return errs.ErrAuthenticationAbsent
	}
	return errs.ErrAuthorizationDenied
}
