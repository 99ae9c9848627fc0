package handlers

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrorsUseFormNames(t *testing.T) {
	RegisterValidators()

	err := binding.Validator.ValidateStruct(&GroupForm{Title: "Cats", Slug: "not a slug"})
	require.Error(t, err)

	verr := fieldErrors(err)
	assert.Equal(t, "This field is required.", verr.Fields["description"])
	assert.Contains(t, verr.Fields["slug"], "valid slug")
	assert.NotContains(t, verr.Fields, "title")
}

func TestFieldErrorsSignupForm(t *testing.T) {
	RegisterValidators()

	err := binding.Validator.ValidateStruct(&SignupForm{Username: "leo", Email: "nope"})
	require.Error(t, err)

	verr := fieldErrors(err)
	assert.Equal(t, "Enter a valid email address.", verr.Fields["email"])
	assert.Equal(t, "This field is required.", verr.Fields["password1"])
	assert.Equal(t, "This field is required.", verr.Fields["password2"])
}

func TestFieldErrorsUnknownError(t *testing.T) {
	verr := fieldErrors(errors.New("malformed body"))
	assert.Equal(t, map[string]string{"__all__": "Invalid form submission."}, verr.Fields)
}

func TestSafeRedirect(t *testing.T) {
	cases := []struct {
		target string
		want   string
	}{
		{"", "/"},
		{"/follow/", "/follow/"},
		{"/group/cats/?page=2", "/group/cats/?page=2"},
		{"http://example.com/leo/", "/leo/"},
		{"https://evil.com/leo/", "/"},
		{"//evil.com/leo/", "/"},
		{"javascript:alert(1)", "/"},
		{"relative/path", "/"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, safeRedirect(tc.target, "example.com"), tc.target)
	}
}
