package jdgen_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bws/jdgen"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := jdgen.NewNotFoundError("template")
		assert.Equal(t, "jdgen: template not found", err.Error())
	})

	t.Run("Error with key", func(t *testing.T) {
		err := jdgen.NewNotFoundErrorWithKey("template", "sql/column")
		assert.Equal(t, `jdgen: template "sql/column" not found`, err.Error())
		assert.Equal(t, "sql/column", err.Key())
		assert.Equal(t, "template", err.Label())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := jdgen.NewNotFoundErrorWithKey("document", "WebContent/Header.jsp")
		assert.True(t, jdgen.IsNotFound(err))
		assert.True(t, errors.Is(err, jdgen.ErrNotFound))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, jdgen.IsNotFound(wrapped))

		assert.True(t, jdgen.IsNotFound(jdgen.ErrNotFound))
		assert.False(t, jdgen.IsNotFound(errors.New("other error")))
		assert.False(t, jdgen.IsNotFound(nil))
	})
}

func TestDuplicateError(t *testing.T) {
	err := jdgen.NewDuplicateError("fragment", "INVOICE")
	assert.Equal(t, `jdgen: fragment "INVOICE" already exists`, err.Error())
	assert.True(t, jdgen.IsDuplicate(err))
	assert.True(t, jdgen.IsDuplicate(fmt.Errorf("add: %w", err)))
	assert.False(t, jdgen.IsDuplicate(jdgen.NewNotFoundError("fragment")))
	assert.False(t, jdgen.IsDuplicate(nil))
}

func TestRollbackError(t *testing.T) {
	cause := errors.New("rename failed")
	err := &jdgen.RollbackError{Err: cause}
	assert.Contains(t, err.Error(), "rollback failed")
	assert.ErrorIs(t, err, cause)
}

func TestAggregateError(t *testing.T) {
	t.Run("nil when empty", func(t *testing.T) {
		assert.NoError(t, jdgen.NewAggregateError())
		assert.NoError(t, jdgen.NewAggregateError(nil, nil))
	})

	t.Run("single error passes through", func(t *testing.T) {
		e := errors.New("only")
		assert.Equal(t, e, jdgen.NewAggregateError(nil, e))
	})

	t.Run("multiple errors", func(t *testing.T) {
		e1, e2 := errors.New("first"), errors.New("second")
		err := jdgen.NewAggregateError(e1, e2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple errors")
		assert.Contains(t, err.Error(), "[1] first")
		assert.Contains(t, err.Error(), "[2] second")
		assert.ErrorIs(t, err, e2)
	})
}
