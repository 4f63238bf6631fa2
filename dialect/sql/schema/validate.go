// Package schema checks atlas table definitions before they are written as
// DDL. It finds problems a database would only report when the script runs.
package schema

import (
	"fmt"
	"strings"

	atlas "ariga.io/atlas/sql/schema"
)

// MaxIdentifierLength is the longest table, column or constraint name
// accepted by every supported database.
const MaxIdentifierLength = 63

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range append(r.Errors, r.Warnings...) {
		if e.Breaking {
			return true
		}
	}
	return false
}

func (r *ValidationResult) errorf(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warnf(table, column, format string, args ...any) {
	r.Warnings = append(r.Warnings, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	external           map[string]bool
	maxIdent           int
	allowDropColumn    bool
	allowDropTable     bool
	allowNullToNotNull bool
}

func newValidateConfig(opts []ValidateOption) *validateConfig {
	cfg := &validateConfig{external: make(map[string]bool), maxIdent: MaxIdentifierLength}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithExternalTables names tables that foreign keys may reference although
// they are managed outside the validated set.
func WithExternalTables(names ...string) ValidateOption {
	return func(c *validateConfig) {
		for _, n := range names {
			c.external[n] = true
		}
	}
}

// WithMaxIdentifierLength overrides MaxIdentifierLength.
func WithMaxIdentifierLength(n int) ValidateOption {
	return func(c *validateConfig) {
		if n > 0 {
			c.maxIdent = n
		}
	}
}

// AllowDropColumn allows dropping columns without error.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable allows dropping tables without error.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowNullToNotNull allows changing nullable columns to not null.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

func (c *validateConfig) identifier(r *ValidationResult, table, column, kind, name string) {
	if len(name) > c.maxIdent {
		r.errorf(table, column, "%s name %q exceeds %d characters", kind, name, c.maxIdent)
	}
}

// ValidateTable validates a single table definition.
func ValidateTable(t *atlas.Table, opts ...ValidateOption) *ValidationResult {
	return validateTable(t, newValidateConfig(opts))
}

func validateTable(t *atlas.Table, cfg *validateConfig) *ValidationResult {
	result := &ValidationResult{}
	cfg.identifier(result, t.Name, "", "table", t.Name)
	if t.PrimaryKey == nil || len(t.PrimaryKey.Parts) == 0 {
		result.warnf(t.Name, "", "table has no primary key")
	}

	colNames := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if colNames[c.Name] {
			result.errorf(t.Name, c.Name, "duplicate column name")
		}
		colNames[c.Name] = true
		cfg.identifier(result, t.Name, c.Name, "column", c.Name)
		if c.Type == nil || c.Type.Raw == "" && c.Type.Type == nil {
			result.errorf(t.Name, c.Name, "column has no type")
		}
	}

	indexes := append([]*atlas.Index(nil), t.Indexes...)
	if t.PrimaryKey != nil {
		indexes = append(indexes, t.PrimaryKey)
	}
	idxNames := make(map[string]bool)
	for _, idx := range indexes {
		if idx.Name != "" {
			if idxNames[idx.Name] {
				result.errorf(t.Name, "", "duplicate index name: %s", idx.Name)
			}
			idxNames[idx.Name] = true
			cfg.identifier(result, t.Name, "", "index", idx.Name)
		}
		for _, part := range idx.Parts {
			if part.C != nil && !colNames[part.C.Name] {
				result.errorf(t.Name, "", "index %q references non-existent column %q", idx.Name, part.C.Name)
			}
		}
	}

	for _, fk := range t.ForeignKeys {
		if idxNames[fk.Symbol] {
			result.errorf(t.Name, "", "duplicate constraint name: %s", fk.Symbol)
		}
		idxNames[fk.Symbol] = true
		cfg.identifier(result, t.Name, "", "constraint", fk.Symbol)
		for _, col := range fk.Columns {
			if !colNames[col.Name] {
				result.errorf(t.Name, "", "foreign key %q references non-existent column %q", fk.Symbol, col.Name)
			}
		}
		if len(fk.Columns) != len(fk.RefColumns) {
			result.errorf(t.Name, "", "foreign key %q has %d columns but references %d", fk.Symbol, len(fk.Columns), len(fk.RefColumns))
		}
	}
	return result
}

// ValidateTables validates a set of tables: each table on its own, table and
// constraint name uniqueness across the set, and foreign key targets. A
// foreign key may only reference a table of the set or an external table.
func ValidateTables(tables []*atlas.Table, opts ...ValidateOption) *ValidationResult {
	cfg := newValidateConfig(opts)
	result := &ValidationResult{}
	byName := make(map[string]*atlas.Table, len(tables))
	constraints := make(map[string]string)
	for _, t := range tables {
		if _, ok := byName[t.Name]; ok {
			result.errorf(t.Name, "", "duplicate table name")
		}
		byName[t.Name] = t
		result.merge(validateTable(t, cfg))
		for _, fk := range t.ForeignKeys {
			if owner, ok := constraints[fk.Symbol]; ok && owner != t.Name {
				result.errorf(t.Name, "", "constraint %q is already defined on %s", fk.Symbol, owner)
			}
			constraints[fk.Symbol] = t.Name
		}
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil {
				result.errorf(t.Name, "", "foreign key %q has no referenced table", fk.Symbol)
				continue
			}
			ref, ok := byName[fk.RefTable.Name]
			if !ok {
				if !cfg.external[fk.RefTable.Name] {
					result.errorf(t.Name, "", "foreign key %q references non-existent table %q", fk.Symbol, fk.RefTable.Name)
				}
				continue
			}
			for _, rc := range fk.RefColumns {
				if _, ok := ref.Column(rc.Name); !ok {
					result.errorf(t.Name, "", "foreign key %q references non-existent column %s.%s", fk.Symbol, ref.Name, rc.Name)
				}
			}
		}
	}
	return result
}

// ValidateDiff validates the change from current to desired tables. Dropped
// tables and columns and nullability tightening are breaking errors unless
// allowed; risky but compatible changes are warnings.
func ValidateDiff(current, desired []*atlas.Table, opts ...ValidateOption) *ValidationResult {
	cfg := newValidateConfig(opts)
	result := &ValidationResult{}
	desiredMap := make(map[string]*atlas.Table, len(desired))
	for _, t := range desired {
		desiredMap[t.Name] = t
	}
	for _, cur := range current {
		des, ok := desiredMap[cur.Name]
		if !ok {
			breaking(result, cfg.allowDropTable, &ValidationError{Table: cur.Name, Message: "table will be dropped"})
			continue
		}
		validateTableDiff(cur, des, cfg, result)
	}
	return result
}

func breaking(result *ValidationResult, allowed bool, err *ValidationError) {
	err.Breaking = true
	if allowed {
		result.Warnings = append(result.Warnings, err)
	} else {
		result.Errors = append(result.Errors, err)
	}
}

func stringSize(c *atlas.Column) int {
	if c.Type == nil {
		return 0
	}
	if s, ok := c.Type.Type.(*atlas.StringType); ok {
		return s.Size
	}
	return 0
}

func validateTableDiff(current, desired *atlas.Table, cfg *validateConfig, result *ValidationResult) {
	for _, cc := range current.Columns {
		dc, ok := desired.Column(cc.Name)
		if !ok {
			breaking(result, cfg.allowDropColumn, &ValidationError{Table: current.Name, Column: cc.Name, Message: "column will be dropped"})
			continue
		}
		if cc.Type == nil || dc.Type == nil {
			continue
		}
		if !strings.EqualFold(cc.Type.Raw, dc.Type.Raw) {
			result.warnf(current.Name, dc.Name, "column type changing from %s to %s", cc.Type.Raw, dc.Type.Raw)
		}
		if cc.Type.Null && !dc.Type.Null {
			breaking(result, cfg.allowNullToNotNull, &ValidationError{
				Table:   current.Name,
				Column:  dc.Name,
				Message: "column changing from NULL to NOT NULL may fail if column has NULL values",
			})
		}
		if cs, ds := stringSize(cc), stringSize(dc); cs > 0 && ds > 0 && ds < cs {
			result.warnf(current.Name, dc.Name, "column size reducing from %d to %d may truncate data", cs, ds)
		}
	}
	for _, dc := range desired.Columns {
		if _, ok := current.Column(dc.Name); ok {
			continue
		}
		if dc.Type != nil && !dc.Type.Null && dc.Default == nil {
			result.warnf(current.Name, dc.Name, "new NOT NULL column without default value may fail if table has data")
		}
	}
}
