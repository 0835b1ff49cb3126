// Package cms reads static page documents kept outside the relational model.
// Content is read-only from this service.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
	"github.com/oksasatya/go-ddd-blog/pkg/validation"
)

const maxPageBytes = 1 << 20

// Page is one CMS document. Subtitle is the only field the service reads;
// everything else is passed through.
type Page struct {
	Slug     string         `json:"slug"`
	Subtitle string         `json:"subtitle"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// Store fetches a page by slug.
type Store interface {
	GetPage(ctx context.Context, slug string) (*Page, error)
}

var slugValidator = validator.New()

func checkSlug(slug string) error {
	if err := slugValidator.Var(slug, "required,"+validation.SlugRule); err != nil {
		return errs.ErrNotFound
	}
	return nil
}

func decodePage(slug string, raw []byte) (*Page, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode page %q: %w", slug, err)
	}
	p := &Page{Slug: slug, Fields: fields}
	if s, ok := fields["subtitle"].(string); ok {
		p.Subtitle = s
	}
	delete(fields, "subtitle")
	if len(fields) == 0 {
		p.Fields = nil
	}
	return p, nil
}

// FileStore reads <Dir>/<slug>.json.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

func (s *FileStore) GetPage(ctx context.Context, slug string) (*Page, error) {
	if err := checkSlug(slug); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(s.Dir, slug+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return decodePage(slug, raw)
}

// GCSStore reads gs://<Bucket>/<Prefix><slug>.json.
type GCSStore struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

func NewGCSStore(client *storage.Client, bucket, prefix string) *GCSStore {
	return &GCSStore{Client: client, Bucket: bucket, Prefix: prefix}
}

func (s *GCSStore) GetPage(ctx context.Context, slug string) (*Page, error) {
	if err := checkSlug(slug); err != nil {
		return nil, err
	}
	if s.Client == nil || s.Bucket == "" {
		return nil, errs.ErrContentSourceDisabled
	}
	raw, err := helpers.ReadObject(ctx, s.Client, s.Bucket, s.Prefix+slug+".json", maxPageBytes)
	if err != nil {
		if errors.Is(err, helpers.ErrObjectNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return decodePage(slug, raw)
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*GCSStore)(nil)
)
