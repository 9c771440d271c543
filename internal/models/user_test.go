package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"test1@Example.com", "test1@example.com"},
		{"Test2@EXAMPLE.com", "Test2@example.com"},
		{"TEST3@EXAMPLE.COM", "TEST3@example.com"},
		{"test4@example.COM", "test4@example.com"},
		{"test5@Example.Com", "test5@example.com"},
		{"we\"ird@Local@Example.ORG", "we\"ird@Local@example.org"},
		{"  spaced@Example.com ", "spaced@example.com"},
		{"no-at-sign", "no-at-sign"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeEmail(tc.in))
		})
	}
}

func TestNewUserRequiresEmail(t *testing.T) {
	_, err := NewUser("", "hash", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = NewUser("   ", "hash", "")
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("Chef@Kitchen.IO", "hash", "Chef")
	require.NoError(t, err)

	assert.Equal(t, "Chef@kitchen.io", u.Email)
	assert.Equal(t, "Chef", u.Name)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)
}
