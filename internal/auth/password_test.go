package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskapi/internal/errors"
)

func TestCheckPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"literal", "password", true},
		{"upper case substring", "MyPaSsWoRd123", true},
		{"fine", "red12345!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordPolicy(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("red12345!")
	require.NoError(t, err)

	assert.NotEqual(t, "red12345!", hash)
	assert.True(t, ComparePassword(hash, "red12345!"))
	assert.False(t, ComparePassword(hash, "red12345?"))
	assert.False(t, BurnCompare("red12345!"))

	_, err = HashPassword("passwordpassword")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
