package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/errs"
)

func TestCreatePostInput_Normalize(t *testing.T) {
	draft, err := CreatePostInput{Title: "  Hello ", Details: "World"}.Normalize()
	require.NoError(t, err)
	require.Equal(t, entity.PostDraft{Title: "Hello", Details: "World"}, draft)
}

func TestCreatePostInput_EmptyFields(t *testing.T) {
	cases := []struct {
		name   string
		in     CreatePostInput
		fields []string
	}{
		{"empty title", CreatePostInput{Title: "", Details: "x"}, []string{"title"}},
		{"blank title", CreatePostInput{Title: " \t\n", Details: "x"}, []string{"title"}},
		{"blank details", CreatePostInput{Title: "t", Details: "   "}, []string{"details"}},
		{"both", CreatePostInput{}, []string{"title", "details"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Normalize()
			ve, ok := errs.IsValidation(err)
			require.True(t, ok)
			require.Len(t, ve.Fields, len(tc.fields))
			for _, f := range tc.fields {
				require.True(t, ve.Has(f), f)
			}
		})
	}
}

func TestCreatePostInput_Messages(t *testing.T) {
	_, err := CreatePostInput{}.Normalize()
	ve, ok := errs.IsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Title cannot be empty", ve.Fields["title"])
	require.Equal(t, "Details cannot be empty", ve.Fields["details"])
}

func TestValidateCreatePost_FieldMap(t *testing.T) {
	draft, err := ValidateCreatePost(map[string]string{"title": " a ", "details": " b "})
	require.NoError(t, err)
	require.Equal(t, "a", draft.Title)
	require.Equal(t, "b", draft.Details)

	_, err = ValidateCreatePost(map[string]string{"details": "b"})
	ve, ok := errs.IsValidation(err)
	require.True(t, ok)
	require.True(t, ve.Has("title"))
}

func TestValidateCreatePost_Deterministic(t *testing.T) {
	in := map[string]string{"title": "", "details": ""}
	_, e1 := ValidateCreatePost(in)
	_, e2 := ValidateCreatePost(in)
	require.Equal(t, e1, e2)
}

func TestUpdateProfileInput_Normalize(t *testing.T) {
	name, err := UpdateProfileInput{Name: "  Ada  "}.Normalize()
	require.NoError(t, err)
	require.Equal(t, "Ada", name)

	_, err = UpdateProfileInput{Name: "  "}.Normalize()
	ve, ok := errs.IsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Cannot be empty", ve.Fields["name"])

	_, err = UpdateProfileInput{Name: strings.Repeat("a", 101)}.Normalize()
	ve, ok = errs.IsValidation(err)
	require.True(t, ok)
	require.Equal(t, "Must be at most 100 characters", ve.Fields["name"])
}
