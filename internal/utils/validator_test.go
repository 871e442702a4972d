package utils

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func TestRequestValidator(t *testing.T) {
	rv := NewRequestValidator()

	require.NoError(t, rv.Validate(&signupInput{
		Name: "Test", Email: "test@example.com", Password: "pass1234", PasswordConfirm: "pass1234",
	}))

	err := rv.Validate(&signupInput{Email: "nope", Password: "short", PasswordConfirm: "other"})
	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve))

	assert.Equal(t, []string{
		"name is required",
		"Please provide a valid email",
		"password must have at least 8 characters",
		"Passwords are not the same!",
	}, ValidationMessages(ve))
}
