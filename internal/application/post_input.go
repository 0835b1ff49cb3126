package application

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
)

// CreatePostInput is the raw "submit new post" form.
type CreatePostInput struct {
	Title   string `json:"title"`
	Details string `json:"details"`
}

// UpdateProfileInput is the raw settings form.
type UpdateProfileInput struct {
	Name string `json:"name"`
}

type createPostSchema struct {
	Title   string `json:"title" validate:"required"`
	Details string `json:"details" validate:"required"`
}

type updateProfileSchema struct {
	Name string `json:"name" validate:"required,max=100"`
}

// messages keyed by field then failing tag; "*" is the fallback for the field
var fieldMessages = map[string]map[string]string{
	"title":   {"*": "Title cannot be empty"},
	"details": {"*": "Details cannot be empty"},
	"name":    {"*": "Cannot be empty", "max": "Must be at most 100 characters"},
}

var schema = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &errs.ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		msgs := fieldMessages[fe.Field()]
		msg, ok := msgs[fe.Tag()]
		if !ok {
			msg = msgs["*"]
		}
		if msg == "" {
			msg = "is invalid"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}

// Normalize trims both fields and requires each to be non-empty.
func (in CreatePostInput) Normalize() (entity.PostDraft, error) {
	s := createPostSchema{
		Title:   strings.TrimSpace(in.Title),
		Details: strings.TrimSpace(in.Details),
	}
	if err := schema.Struct(s); err != nil {
		return entity.PostDraft{}, toValidationError(err)
	}
	return entity.PostDraft{Title: s.Title, Details: s.Details}, nil
}

// ValidateCreatePost validates a generic field map; absent keys count as empty.
func ValidateCreatePost(fields map[string]string) (entity.PostDraft, error) {
	return CreatePostInput{Title: fields["title"], Details: fields["details"]}.Normalize()
}

// Normalize returns the trimmed display name.
func (in UpdateProfileInput) Normalize() (string, error) {
	s := updateProfileSchema{Name: strings.TrimSpace(in.Name)}
	if err := schema.Struct(s); err != nil {
		return "", toValidationError(err)
	}
	return s.Name, nil
}
