package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/internal/infrastructure/cms"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

const HomePageSlug = "homePage"

// HomeView is the landing page: CMS copy plus the post list.
type HomeView struct {
	Subtitle string                 `json:"subtitle"`
	Posts    []entity.PostWithOwner `json:"posts"`
}

// PageService reads editorial content.
type PageService struct {
	pages  cms.Store
	posts  *PostService
	logger *logrus.Logger
}

func NewPageService(pages cms.Store, posts *PostService, logger *logrus.Logger) *PageService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &PageService{pages: pages, posts: posts, logger: logger}
}

func (s *PageService) Page(ctx context.Context, slug string) (*cms.Page, error) {
	if s.pages == nil {
		return nil, errs.ErrNotFound
	}
	p, err := s.pages.GetPage(ctx, slug)
	if errors.Is(err, errs.ErrContentSourceDisabled) {
		return nil, errs.ErrNotFound
	}
	return p, err
}

// Home renders without a subtitle when the content source is unavailable.
func (s *PageService) Home(ctx context.Context) (*HomeView, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	view := &HomeView{Posts: posts}
	page, err := s.Page(ctx, HomePageSlug)
	switch {
	case err == nil:
		view.Subtitle = page.Subtitle
	case errors.Is(err, errs.ErrNotFound):
	default:
		s.logger.WithError(err).Warn("home page content unavailable")
	}
	return view, nil
}
