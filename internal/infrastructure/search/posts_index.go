// Package search mirrors posts into Elasticsearch for full-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/event"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
)

// Hit is one search result.
type Hit struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Details   string    `json:"details"`
	OwnerID   string    `json:"owner_id"`
	OwnerName string    `json:"owner_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PostIndex writes posts to an index and queries it. A nil client disables
// both sides: indexing is skipped and searches return nothing.
type PostIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Posts  repository.PostRepository
	Logger *logrus.Logger
}

func NewPostIndex(es *elasticsearch.Client, index string, posts repository.PostRepository, logger *logrus.Logger) *PostIndex {
	return &PostIndex{ES: es, Index: index, Posts: posts, Logger: logger}
}

func (x *PostIndex) enabled() bool { return x != nil && x.ES != nil && x.Index != "" }

func (x *PostIndex) Name() string { return "search-index" }

// HandlePostCreated indexes the new post, joined with its owner's name.
func (x *PostIndex) HandlePostCreated(ctx context.Context, ev event.PostCreated) error {
	if !x.enabled() {
		return nil
	}
	pw, err := x.Posts.GetByID(ctx, ev.PostID)
	if err != nil {
		return fmt.Errorf("load post for indexing: %w", err)
	}
	return x.IndexPost(ctx, pw)
}

func (x *PostIndex) IndexPost(ctx context.Context, pw *entity.PostWithOwner) error {
	if !x.enabled() {
		return nil
	}
	doc := Hit{
		ID:        pw.ID,
		Title:     pw.Title,
		Details:   pw.Details,
		OwnerID:   pw.UserID,
		OwnerName: pw.Owner.Name,
		CreatedAt: pw.CreatedAt,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: pw.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index post %s: %s", pw.ID, res.Status())
	}
	return nil
}

// Search runs a multi_match over title and details, newest first on ties.
func (x *PostIndex) Search(ctx context.Context, q string, size int) ([]Hit, error) {
	if !x.enabled() {
		return []Hit{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "details"},
			},
		},
		"sort": []any{"_score", map[string]any{"created_at": "desc"}},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search posts: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source Hit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ event.Subscriber = (*PostIndex)(nil)
