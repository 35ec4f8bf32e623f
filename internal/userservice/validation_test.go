package userservice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hlumme/bloglist/internal/common"
)

func TestValidateUsername(t *testing.T) {
	testCases := []struct {
		name     string
		username string
		expected map[string]string
	}{
		{
			name:     "valid username",
			username: "pedro123",
			expected: map[string]string{},
		},
		{
			name:     "empty username",
			username: "",
			expected: map[string]string{"username": "must be provided"},
		},
		{
			name:     "too short",
			username: "ab",
			expected: map[string]string{"username": "must be between 3 and 25 characters long"},
		},
		{
			name:     "invalid characters",
			username: "pedro 123!",
			expected: map[string]string{"username": "must only contain letters and numbers"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateUsername(v, tc.username)
			assert.Equal(t, tc.expected, v.Errors)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		expected map[string]string
	}{
		{
			name:     "valid password",
			password: "salsa",
			expected: map[string]string{},
		},
		{
			name:     "empty password",
			password: "",
			expected: map[string]string{"password": "must be provided"},
		},
		{
			name:     "too short",
			password: "ab",
			expected: map[string]string{"password": "must be between 3 and 72 characters long"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validatePassword(v, tc.password)
			assert.Equal(t, tc.expected, v.Errors)
		})
	}
}

func TestValidateToken(t *testing.T) {
	v := common.NewValidator()
	ValidateToken(v, "")
	assert.Equal(t, map[string]string{"token": "must be provided"}, v.Errors)

	v = common.NewValidator()
	ValidateToken(v, "tooshort")
	assert.Equal(t, map[string]string{"token": "invalid token"}, v.Errors)

	v = common.NewValidator()
	ValidateToken(v, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	assert.True(t, v.Valid())
}
