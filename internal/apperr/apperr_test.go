package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode(t *testing.T) {
	t.Run("Known kinds", func(t *testing.T) {
		assert.Equal(t, CodeValidation, Code(Validation("description is required")))
		assert.Equal(t, CodeUnauthorized, Code(Unauthorized("login required")))
		assert.Equal(t, CodeNotFound, Code(NotFound("link %d not found", 7)))
		assert.Equal(t, CodeStore, Code(Store("could not count links", errors.New("connection refused"))))
	})

	t.Run("Wrapped kinds are still recognized", func(t *testing.T) {
		err := fmt.Errorf("resolver: %w", NotFound("link 1 not found"))
		assert.Equal(t, CodeNotFound, Code(err))
	})

	t.Run("Unknown and nil errors have no code", func(t *testing.T) {
		assert.Equal(t, "", Code(errors.New("boom")))
		assert.Equal(t, "", Code(nil))
	})
}

func TestStoreKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Store("could not find links", cause)

	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "could not find links")
}

func TestClassify(t *testing.T) {
	t.Run("Unclassified error becomes store error", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Classify(cause)
		assert.ErrorIs(t, err, ErrStore)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Classified error is untouched", func(t *testing.T) {
		orig := NotFound("link 3 not found")
		assert.Same(t, orig, Classify(orig))
	})

	t.Run("Nil stays nil", func(t *testing.T) {
		assert.NoError(t, Classify(nil))
	})
}

func TestPresenter(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds code extension", func(t *testing.T) {
		gqlErr := Presenter(ctx, Unauthorized("you must be logged in"))
		require.NotNil(t, gqlErr)
		assert.Equal(t, CodeUnauthorized, gqlErr.Extensions["code"])
		assert.Contains(t, gqlErr.Message, "you must be logged in")
	})

	t.Run("Leaves unknown errors alone", func(t *testing.T) {
		gqlErr := Presenter(ctx, errors.New("boom"))
		require.NotNil(t, gqlErr)
		assert.NotContains(t, gqlErr.Extensions, "code")
	})
}
