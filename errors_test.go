package landmark_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"

	landmark "github.com/nurlan1717/landmark-backend"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"repository record not found", repository.NewRecordNotFound(), true},
		{"repository record not found with metadata", repository.NewRecordNotFound().WithMetadata(map[string]any{"id": "x"}), true},
		{"application not found", goerrors.New("missing", goerrors.CategoryNotFound), true},
		{"auth error", landmark.ErrInvalidCredentials, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, landmark.IsNotFound(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	assert.True(t, landmark.IsMalformedError(errors.New("token is malformed: could not base64 decode")))
	assert.True(t, landmark.IsMalformedError(errors.New("missing or malformed JWT")))
	assert.False(t, landmark.IsMalformedError(nil))
	assert.False(t, landmark.IsMalformedError(errors.New("token is expired")))
}
