package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/event"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	"github.com/oksasatya/go-ddd-blog/pkg/metrics"
)

const (
	ViewPostList = "list"

	generationKey = "view:posts:gen"
)

// ViewOwnerPosts names the cached listing of one owner's posts.
func ViewOwnerPosts(ownerID string) string { return "owner:" + ownerID }

// ViewCache memoizes post-derived views. Every view shares one generation
// counter; invalidating bumps it, so entries written by readers that started
// before the bump are never read again and expire on their TTL.
type ViewCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewViewCache(rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *ViewCache {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &ViewCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *ViewCache) generation(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func viewKey(view string, gen int64) string {
	return "view:posts:" + view + ":g" + strconv.FormatInt(gen, 10)
}

// Invalidate marks every post view stale.
func (c *ViewCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		metrics.ViewCacheInvalidations.WithLabelValues("error").Inc()
		return err
	}
	metrics.ViewCacheInvalidations.WithLabelValues("ok").Inc()
	return nil
}

func (c *ViewCache) Name() string { return "view-cache" }

func (c *ViewCache) HandlePostCreated(ctx context.Context, _ event.PostCreated) error {
	return c.Invalidate(ctx)
}

// ReadThrough serves view from the cache or computes it with load and stores
// the result. Cache errors never fail the read; load errors are returned.
func ReadThrough[T any](ctx context.Context, c *ViewCache, view string, load func(context.Context) (T, error)) (T, error) {
	if c == nil || c.rdb == nil {
		return load(ctx)
	}
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.WithError(err).WithField("view", view).Warn("view cache unavailable")
		metrics.ViewCacheLookups.WithLabelValues(viewLabel(view), "error").Inc()
		return load(ctx)
	}
	key := viewKey(view, gen)

	var cached T
	hit, err := helpers.RedisGetJSON(ctx, c.rdb, key, &cached)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("view cache read failed")
	}
	if hit {
		metrics.ViewCacheLookups.WithLabelValues(viewLabel(view), "hit").Inc()
		return cached, nil
	}
	metrics.ViewCacheLookups.WithLabelValues(viewLabel(view), "miss").Inc()

	fresh, err := load(ctx)
	if err != nil {
		return fresh, err
	}
	if err := helpers.RedisSetJSON(ctx, c.rdb, key, fresh, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("view cache write failed")
	}
	return fresh, nil
}

// owner views share one label to keep metric cardinality bounded
func viewLabel(view string) string {
	if view == ViewPostList {
		return view
	}
	return "owner"
}

var _ event.Subscriber = (*ViewCache)(nil)
