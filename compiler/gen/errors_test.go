package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bws/jdgen"
)

func TestDefinitionError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewDefinitionError("Invoice", "Number", "invalid length", cause)

		assert.Contains(t, err.Error(), "jdgen: definition error")
		assert.Contains(t, err.Error(), "entity Invoice")
		assert.Contains(t, err.Error(), "attribute Number")
		assert.Contains(t, err.Error(), "invalid length")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with entity only", func(t *testing.T) {
		err := &DefinitionError{Entity: "Invoice"}
		assert.Contains(t, err.Error(), "entity Invoice")
		assert.NotContains(t, err.Error(), "attribute")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := jdgen.NewDuplicateError("fragment", "INVOICE")
		err := NewDefinitionError("Invoice", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, jdgen.IsDuplicate(err))
	})

	t.Run("Is matches ErrInvalidDefinition", func(t *testing.T) {
		err := NewDefinitionError("Invoice", "", "", nil)
		assert.ErrorIs(t, err, ErrInvalidDefinition)
		assert.NotErrorIs(t, err, ErrInvalidRelationship)
	})
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("Workers", -1, "must be positive")
	assert.Equal(t, `jdgen: config error for "Workers" (value: -1): must be positive`, err.Error())
	assert.ErrorIs(t, err, ErrMissingConfig)

	err = NewConfigError("Logger", nil, "logger cannot be nil")
	assert.Equal(t, `jdgen: config error for "Logger": logger cannot be nil`, err.Error())
}

func TestRelationshipError(t *testing.T) {
	tests := []struct {
		name string
		err  *RelationshipError
		want string
	}{
		{
			name: "both entities",
			err:  NewRelationshipError("Invoice", "Customer", "entities are already related", nil),
			want: "jdgen: relationship error (Invoice -> Customer): entities are already related",
		},
		{
			name: "source only",
			err:  NewRelationshipError("Invoice", "", "missing target", nil),
			want: "jdgen: relationship error from Invoice: missing target",
		},
		{
			name: "with cause",
			err:  NewRelationshipError("A", "B", "invalid", errors.New("boom")),
			want: "jdgen: relationship error (A -> B): invalid: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrInvalidRelationship)
		})
	}
}

func TestPrerequisiteError(t *testing.T) {
	err := NewPrerequisiteError("updating configuration information", "FieldIds class", "src/com/acme/FieldIds.java")
	assert.Equal(t,
		"jdgen: error updating configuration information: FieldIds class not found (src/com/acme/FieldIds.java)",
		err.Error())
	assert.ErrorIs(t, err, ErrMissingPrerequisite)

	err = NewPrerequisiteError("defining X", "PageIds class", "")
	assert.NotContains(t, err.Error(), "(")
}

func TestAnchorError(t *testing.T) {
	cause := errors.New("slot not found")
	err := NewAnchorError("web/Header.jsp", "menu-links", cause)
	assert.Equal(t, "jdgen: anchor menu-links not found in web/Header.jsp: slot not found", err.Error())
	assert.ErrorIs(t, err, ErrMissingAnchor)
	assert.ErrorIs(t, err, cause)
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("template missing")
	err := NewGenerationError("view", "Invoice", "", cause)
	assert.Equal(t, "jdgen: generation error in emitter view (Invoice): template missing", err.Error())
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("web/invoices/Invoices.jsp", "FieldIds.INVOICE_TOTAL", "reference to undefined constant")
	assert.Equal(t,
		"jdgen: validation error in web/invoices/Invoices.jsp symbol FieldIds.INVOICE_TOTAL: reference to undefined constant",
		err.Error())
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestIsErrorHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"definition", NewDefinitionError("A", "", "", nil), IsDefinitionError},
		{"config", NewConfigError("x", nil, ""), IsConfigError},
		{"relationship", NewRelationshipError("A", "B", "", nil), IsRelationshipError},
		{"prerequisite", NewPrerequisiteError("op", "artifact", ""), IsPrerequisiteError},
		{"anchor", NewAnchorError("p", "s", nil), IsAnchorError},
		{"generation", NewGenerationError("sql", "A", "", nil), IsGenerationError},
		{"validation", NewValidationError("p", "", ""), IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)))
			assert.True(t, tt.check(jdgen.NewAggregateError(errors.New("other"), tt.err)))
			assert.False(t, tt.check(errors.New("plain")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestEmitterErr(t *testing.T) {
	require.NoError(t, emitterErr("view", "Invoice", nil))

	pre := NewPrerequisiteError("op", "artifact", "path")
	assert.Same(t, pre, emitterErr("view", "Invoice", pre))

	err := emitterErr("view", "Invoice", errors.New("boom"))
	var gen *GenerationError
	require.ErrorAs(t, err, &gen)
	assert.Equal(t, "view", gen.Emitter)
	assert.Equal(t, "Invoice", gen.Subject)
}
