package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{"without cause", ValidationError("question is required", nil), "[validation] question is required"},
		{"with cause", IOError("read knowledge file", errors.New("permission denied")), "[io] read knowledge file: permission denied"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("fetch: %w", APIError("completion request failed", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsType(err, ErrorTypeAPI))
	assert.False(t, IsType(err, ErrorTypeParse))
	assert.False(t, IsType(cause, ErrorTypeAPI))
}
