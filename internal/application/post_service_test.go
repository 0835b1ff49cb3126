package application

import (
	"context"
	"errors"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/domain/event"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/search"
)

type postFixture struct {
	store  *memory.Store
	cache  *redisstore.ViewCache
	svc    *PostService
	events []event.PostCreated
	users  map[entity.Role]*entity.User
}

func newPostFixture(t *testing.T, extra ...event.Subscriber) *postFixture {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	f := &postFixture{
		store: memory.NewStore().WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
		users: map[entity.Role]*entity.User{},
	}
	f.cache = redisstore.NewViewCache(redis.NewClient(&redis.Options{Addr: m.Addr()}), time.Minute, nil)

	recorder := event.SubscriberFunc{Label: "recorder", Fn: func(_ context.Context, ev event.PostCreated) error {
		f.events = append(f.events, ev)
		return nil
	}}
	subs := append([]event.Subscriber{f.cache, recorder}, extra...)
	f.svc = NewPostService(f.store.Posts(), NewPostEventBus(subs...), f.cache, nil, nil)

	for _, r := range entity.Roles {
		u, err := f.store.Users().UpsertByEmail(context.Background(), &entity.User{Email: string(r) + "@example.com", Name: r.Title(), Role: r})
		require.NoError(t, err)
		f.users[r] = u
	}
	return f
}

func (f *postFixture) identity(r entity.Role) *entity.Identity {
	return &entity.Identity{UserID: f.users[r].ID, Role: r}
}

func (f *postFixture) count(t *testing.T) int {
	t.Helper()
	n, err := f.store.Posts().Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreatePost_ContributorSeesOwnWrite(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	before, err := f.svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Empty(t, before)

	p, err := f.svc.CreatePost(ctx, f.identity(entity.RoleContributor), CreatePostInput{Title: "  Hello ", Details: "World "})
	require.NoError(t, err)
	require.Equal(t, "Hello", p.Title)
	require.Equal(t, "World", p.Details)
	require.Equal(t, f.users[entity.RoleContributor].ID, p.UserID)

	after, err := f.svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	require.Equal(t, p.ID, after[0].ID)
	require.Equal(t, "Contributor", after[0].Owner.Name)

	require.Len(t, f.events, 1)
	require.Equal(t, p.ID, f.events[0].PostID)
}

func TestCreatePost_AdminAllowed(t *testing.T) {
	f := newPostFixture(t)
	p, err := f.svc.CreatePost(context.Background(), f.identity(entity.RoleAdmin), CreatePostInput{Title: "t", Details: "d"})
	require.NoError(t, err)
	require.Equal(t, f.users[entity.RoleAdmin].ID, p.UserID)
}

func TestCreatePost_AnonymousRejected(t *testing.T) {
	f := newPostFixture(t)
	_, err := f.svc.CreatePost(context.Background(), nil, CreatePostInput{Title: "t", Details: "d"})
	require.ErrorIs(t, err, errs.ErrAuthenticationAbsent)
	require.Zero(t, f.count(t))
	require.Empty(t, f.events)
}

func TestCreatePost_ReaderDenied(t *testing.T) {
	f := newPostFixture(t)
	_, err := f.svc.CreatePost(context.Background(), f.identity(entity.RoleReader), CreatePostInput{Title: "t", Details: "d"})
	require.ErrorIs(t, err, errs.ErrAuthorizationDenied)
	require.Zero(t, f.count(t))
	require.Empty(t, f.events)
}

func TestCreatePost_ValidationBeforeAnythingElse(t *testing.T) {
	f := newPostFixture(t)
	_, err := f.svc.CreatePost(context.Background(), f.identity(entity.RoleContributor), CreatePostInput{Title: "   ", Details: "d"})
	ve, ok := errs.IsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Title cannot be empty", ve.Fields["title"])
	require.Zero(t, f.count(t))

	_, err = f.svc.CreatePost(context.Background(), nil, CreatePostInput{})
	_, ok = errs.IsValidation(err)
	require.True(t, ok)
}

func TestCreatePost_MissingOwnerIsPersistenceError(t *testing.T) {
	f := newPostFixture(t)
	ghost := &entity.Identity{UserID: "00000000-0000-0000-0000-000000000000", Role: entity.RoleContributor}
	_, err := f.svc.CreatePost(context.Background(), ghost, CreatePostInput{Title: "t", Details: "d"})
	var pe *errs.PersistenceError
	require.ErrorAs(t, err, &pe)
	require.ErrorIs(t, err, errs.ErrOwnerNotFound)
	require.Zero(t, f.count(t))
	require.Empty(t, f.events)
}

func TestCreatePost_CancelledBeforeWrite(t *testing.T) {
	f := newPostFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.CreatePost(ctx, f.identity(entity.RoleContributor), CreatePostInput{Title: "t", Details: "d"})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, f.count(t))
}

func TestCreatePost_SubscriberFailureStillSucceeds(t *testing.T) {
	failing := event.SubscriberFunc{Label: "broken", Fn: func(context.Context, event.PostCreated) error {
		return errors.New("downstream down")
	}}
	f := newPostFixture(t, failing)
	p, err := f.svc.CreatePost(context.Background(), f.identity(entity.RoleContributor), CreatePostInput{Title: "t", Details: "d"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, 1, f.count(t))
}

func TestListPosts_NewestFirst(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		p, err := f.svc.CreatePost(ctx, f.identity(entity.RoleContributor), CreatePostInput{Title: title, Details: title})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	list, err := f.svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestGetPost(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	p, err := f.svc.CreatePost(ctx, f.identity(entity.RoleAdmin), CreatePostInput{Title: "t", Details: "d"})
	require.NoError(t, err)

	got, err := f.svc.GetPost(ctx, p.ID, p.CreatedAt.Add(3*time.Hour))
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, "Admin", got.Owner.Name)
	require.Equal(t, entity.RoleAdmin, got.Owner.Role)
	require.Equal(t, "3 hours ago", got.CreatedAgo)

	_, err = f.svc.GetPost(ctx, "missing", time.Now())
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListOwnPosts(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	mine, err := f.svc.CreatePost(ctx, f.identity(entity.RoleContributor), CreatePostInput{Title: "mine", Details: "d"})
	require.NoError(t, err)
	_, err = f.svc.CreatePost(ctx, f.identity(entity.RoleAdmin), CreatePostInput{Title: "theirs", Details: "d"})
	require.NoError(t, err)

	list, err := f.svc.ListOwnPosts(ctx, f.identity(entity.RoleContributor))
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, mine.ID, list[0].ID)

	_, err = f.svc.ListOwnPosts(ctx, nil)
	require.ErrorIs(t, err, errs.ErrAuthenticationAbsent)
	_, err = f.svc.ListOwnPosts(ctx, f.identity(entity.RoleReader))
	require.ErrorIs(t, err, errs.ErrAuthorizationDenied)
	_, err = f.svc.ListOwnPosts(ctx, f.identity(entity.RoleAdmin))
	require.ErrorIs(t, err, errs.ErrAuthorizationDenied)
}

type fakeSearcher struct {
	q    string
	hits []search.Hit
}

func (s *fakeSearcher) Search(_ context.Context, q string, _ int) ([]search.Hit, error) {
	s.q = q
	return s.hits, nil
}

func TestSearchPosts(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.svc.SearchPosts(ctx, "  ", 10)
	ve, ok := errs.IsValidation(err)
	require.True(t, ok)
	require.True(t, ve.Has("q"))

	hits, err := f.svc.SearchPosts(ctx, "go", 10)
	require.NoError(t, err)
	require.Empty(t, hits)

	fs := &fakeSearcher{hits: []search.Hit{{ID: "p1", Title: "Go"}}}
	svc := NewPostService(f.store.Posts(), nil, nil, fs, nil)
	hits, err = svc.SearchPosts(ctx, " go ", 10)
	require.NoError(t, err)
	require.Equal(t, "go", fs.q)
	require.Len(t, hits, 1)
}

type recordingPublisher struct {
	msgType string
	body    any
}

func (p *recordingPublisher) PublishJSON(_ context.Context, msgType string, body any) error {
	p.msgType, p.body = msgType, body
	return nil
}

func TestQueueSubscriber(t *testing.T) {
	pub := &recordingPublisher{}
	ev := event.PostCreated{PostID: "p1", OwnerID: "u1", Title: "t"}
	require.NoError(t, QueueSubscriber{Publisher: pub}.HandlePostCreated(context.Background(), ev))
	require.Equal(t, MessagePostCreated, pub.msgType)
	require.Equal(t, ev, pub.body)

	require.NoError(t, QueueSubscriber{}.HandlePostCreated(context.Background(), ev))
}
