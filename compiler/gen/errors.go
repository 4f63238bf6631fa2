package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidDefinition indicates a fragment definition or view options error.
	ErrInvalidDefinition = errors.New("jdgen: invalid definition")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("jdgen: missing configuration")
	// ErrInvalidRelationship indicates a relationship definition error.
	ErrInvalidRelationship = errors.New("jdgen: invalid relationship")
	// ErrMissingPrerequisite indicates that a previously generated artifact is absent.
	ErrMissingPrerequisite = errors.New("jdgen: missing prerequisite")
	// ErrMissingAnchor indicates that a stored document lacks an insertion slot.
	ErrMissingAnchor = errors.New("jdgen: missing anchor")
	// ErrGenerationFailed indicates an emitter failure.
	ErrGenerationFailed = errors.New("jdgen: generation failed")
	// ErrValidationFailed indicates that the built artifacts are inconsistent.
	ErrValidationFailed = errors.New("jdgen: validation failed")
)

// DefinitionError represents an invalid fragment definition.
type DefinitionError struct {
	Entity    string
	Attribute string // Attribute name (if applicable)
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	var b strings.Builder
	b.WriteString("jdgen: definition error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Attribute != "" {
		b.WriteString(" attribute ")
		b.WriteString(e.Attribute)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for DefinitionError.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidDefinition
}

// NewDefinitionError creates a new DefinitionError.
func NewDefinitionError(entity, attribute, message string, cause error) *DefinitionError {
	return &DefinitionError{
		Entity:    entity,
		Attribute: attribute,
		Message:   message,
		Cause:     cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("jdgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("jdgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// RelationshipError represents an invalid or conflicting relationship.
type RelationshipError struct {
	Source  string
	Target  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RelationshipError) Error() string {
	var b strings.Builder
	b.WriteString("jdgen: relationship error")
	if e.Source != "" && e.Target != "" {
		fmt.Fprintf(&b, " (%s -> %s)", e.Source, e.Target)
	} else if e.Source != "" {
		b.WriteString(" from ")
		b.WriteString(e.Source)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *RelationshipError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for RelationshipError.
func (e *RelationshipError) Is(target error) bool {
	return target == ErrInvalidRelationship
}

// NewRelationshipError creates a new RelationshipError.
func NewRelationshipError(source, target, message string, cause error) *RelationshipError {
	return &RelationshipError{
		Source:  source,
		Target:  target,
		Message: message,
		Cause:   cause,
	}
}

// PrerequisiteError reports that an artifact an emitter depends on has not
// been generated, for example the FieldIds class before Init.
type PrerequisiteError struct {
	Operation string // "updating configuration information"
	Artifact  string // "FieldIds class"
	Path      string
}

// Error implements the error interface.
func (e *PrerequisiteError) Error() string {
	var b strings.Builder
	b.WriteString("jdgen: error ")
	b.WriteString(e.Operation)
	b.WriteString(": ")
	b.WriteString(e.Artifact)
	b.WriteString(" not found")
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for PrerequisiteError.
func (e *PrerequisiteError) Is(target error) bool {
	return target == ErrMissingPrerequisite
}

// NewPrerequisiteError creates a new PrerequisiteError.
func NewPrerequisiteError(operation, artifact, path string) *PrerequisiteError {
	return &PrerequisiteError{
		Operation: operation,
		Artifact:  artifact,
		Path:      path,
	}
}

// AnchorError reports a stored document without the slot an emitter appends to.
type AnchorError struct {
	Path  string
	Slot  string
	Cause error
}

// Error implements the error interface.
func (e *AnchorError) Error() string {
	var b strings.Builder
	b.WriteString("jdgen: anchor ")
	b.WriteString(e.Slot)
	b.WriteString(" not found in ")
	b.WriteString(e.Path)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *AnchorError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for AnchorError.
func (e *AnchorError) Is(target error) bool {
	return target == ErrMissingAnchor
}

// NewAnchorError creates a new AnchorError.
func NewAnchorError(path, slot string, cause error) *AnchorError {
	return &AnchorError{
		Path:  path,
		Slot:  slot,
		Cause: cause,
	}
}

// GenerationError represents an emitter failure.
type GenerationError struct {
	Emitter string // "configuration", "view", etc.
	Subject string // Entity or relationship being generated
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("jdgen: generation error")
	if e.Emitter != "" {
		b.WriteString(" in emitter ")
		b.WriteString(e.Emitter)
	}
	if e.Subject != "" {
		b.WriteString(" (")
		b.WriteString(e.Subject)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(emitter, subject, message string, cause error) *GenerationError {
	return &GenerationError{
		Emitter: emitter,
		Subject: subject,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError reports an unresolved cross reference or an invalid table
// in the artifacts of a transaction.
type ValidationError struct {
	Path    string // Document or table the problem was found in
	Symbol  string // Unresolved reference (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("jdgen: validation error")
	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}
	if e.Symbol != "" {
		b.WriteString(" symbol ")
		b.WriteString(e.Symbol)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NewValidationError creates a new ValidationError.
func NewValidationError(path, symbol, message string) *ValidationError {
	return &ValidationError{
		Path:    path,
		Symbol:  symbol,
		Message: message,
	}
}

// IsDefinitionError reports whether the error is a DefinitionError.
func IsDefinitionError(err error) bool {
	var defErr *DefinitionError
	return errors.As(err, &defErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsRelationshipError reports whether the error is a RelationshipError.
func IsRelationshipError(err error) bool {
	var relErr *RelationshipError
	return errors.As(err, &relErr)
}

// IsPrerequisiteError reports whether the error is a PrerequisiteError.
func IsPrerequisiteError(err error) bool {
	var preErr *PrerequisiteError
	return errors.As(err, &preErr)
}

// IsAnchorError reports whether the error is an AnchorError.
func IsAnchorError(err error) bool {
	var anchorErr *AnchorError
	return errors.As(err, &anchorErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsValidationError reports whether the error is a ValidationError.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
