package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrNotFound, "bug not found")

	assert.Equal(t, "bug not found", clone.Message)
	assert.Equal(t, http.StatusNotFound, clone.Status)
	assert.True(t, stdErrors.Is(clone, ErrNotFound))
	assert.False(t, stdErrors.Is(clone, ErrForbidden))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("outer: %w", ErrRateLimited)
	assert.Equal(t, ErrRateLimited, FromError(wrapped))

	plain := FromError(stdErrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Contains(t, plain.Error(), "boom")
}
