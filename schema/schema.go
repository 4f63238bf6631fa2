package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Numeric value types accepted by the number rule of generated fields.
const (
	ValueTypeAny      = "Any"
	ValueTypePositive = "Positive"
	ValueTypeNegative = "Negative"
)

// Attribute describes one field of an entity.
type Attribute struct {
	Name string `yaml:"name" json:"name" msgpack:"name"`
	Kind Kind   `yaml:"kind" json:"kind" msgpack:"kind"`

	Required bool `yaml:"required,omitempty" json:"required,omitempty" msgpack:"required,omitempty"`
	// Filter includes the attribute in the search filter panel.
	Filter bool `yaml:"filter,omitempty" json:"filter,omitempty" msgpack:"filter,omitempty"`
	// Column includes the attribute in the search results table.
	Column bool `yaml:"column,omitempty" json:"column,omitempty" msgpack:"column,omitempty"`

	// Text-like kinds.
	MaxLength int `yaml:"maxLength,omitempty" json:"maxLength,omitempty" msgpack:"maxLength,omitempty"`

	// Numeric.
	ValueType string `yaml:"valueType,omitempty" json:"valueType,omitempty" msgpack:"valueType,omitempty"`
	Precision int    `yaml:"precision,omitempty" json:"precision,omitempty" msgpack:"precision,omitempty"`
	Scale     int    `yaml:"scale,omitempty" json:"scale,omitempty" msgpack:"scale,omitempty"`

	// Lookup. CategoryID is zero until the category has been allocated.
	CategoryName   string `yaml:"category,omitempty" json:"category,omitempty" msgpack:"category,omitempty"`
	CategoryID     int    `yaml:"categoryId,omitempty" json:"categoryId,omitempty" msgpack:"categoryId,omitempty"`
	MultipleValues bool   `yaml:"multiple,omitempty" json:"multiple,omitempty" msgpack:"multiple,omitempty"`
}

// IsTextLike reports whether the attribute is stored as a bounded string.
func (a *Attribute) IsTextLike() bool { return a.Kind.IsTextLike() }

// IsMultiLookup reports whether the attribute is a multi-valued lookup, which
// is stored in an associative table rather than a column.
func (a *Attribute) IsMultiLookup() bool {
	return a.Kind == KindLookup && a.MultipleValues
}

// NumericValueType returns the value type, defaulting to Any.
func (a *Attribute) NumericValueType() string {
	if a.ValueType == "" {
		return ValueTypeAny
	}
	return a.ValueType
}

// Validate checks that the kind specific payload is consistent with the kind.
func (a *Attribute) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("schema: attribute name is empty")
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("schema: attribute %q: invalid kind %s", a.Name, a.Kind)
	}
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("schema: attribute %q: "+format, append([]any{a.Name}, args...)...))
	}
	switch {
	case a.Kind.IsTextLike():
		if a.MaxLength <= 0 {
			bad("%s requires a positive max length", a.Kind)
		}
	case a.Kind == KindNumeric:
		if a.Precision <= 0 {
			bad("numeric requires a positive precision")
		}
		if a.Scale < 0 || a.Scale > a.Precision {
			bad("numeric scale %d out of range [0, %d]", a.Scale, a.Precision)
		}
		switch a.NumericValueType() {
		case ValueTypeAny, ValueTypePositive, ValueTypeNegative:
		default:
			bad("unknown numeric value type %q", a.ValueType)
		}
	case a.Kind == KindLookup:
		if strings.TrimSpace(a.CategoryName) == "" {
			bad("lookup requires a category name")
		}
		if a.CategoryID < 0 {
			bad("negative category id %d", a.CategoryID)
		}
	}
	if !a.Kind.IsTextLike() && a.MaxLength != 0 {
		bad("max length is not allowed for %s", a.Kind)
	}
	if a.Kind != KindNumeric && (a.Precision != 0 || a.Scale != 0 || a.ValueType != "") {
		bad("precision, scale and value type are not allowed for %s", a.Kind)
	}
	if a.Kind != KindLookup && (a.CategoryName != "" || a.CategoryID != 0 || a.MultipleValues) {
		bad("category and multiple values are not allowed for %s", a.Kind)
	}
	return errors.Join(errs...)
}

// Fragment describes one generated entity.
type Fragment struct {
	// EntityName is the common name of the entity, e.g. "Line Item".
	EntityName  string `yaml:"entity" json:"entity" msgpack:"entity"`
	PackageName string `yaml:"package" json:"package" msgpack:"package"`
	// ParentEntityName names a previously generated fragment this entity
	// belongs to.
	ParentEntityName string       `yaml:"parent,omitempty" json:"parent,omitempty" msgpack:"parent,omitempty"`
	Attributes       []*Attribute `yaml:"attributes" json:"attributes" msgpack:"attributes"`
	Paging           bool         `yaml:"paging,omitempty" json:"paging,omitempty" msgpack:"paging,omitempty"`
	PageSize         int          `yaml:"pageSize,omitempty" json:"pageSize,omitempty" msgpack:"pageSize,omitempty"`
}

// HasParent reports whether the fragment belongs to a parent entity.
func (f *Fragment) HasParent() bool {
	return strings.TrimSpace(f.ParentEntityName) != ""
}

// Attribute returns the attribute with the given name, compared
// case-insensitively.
func (f *Fragment) Attribute(name string) (*Attribute, bool) {
	for _, a := range f.Attributes {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return nil, false
}

// Lookups returns the lookup attributes in declaration order.
func (f *Fragment) Lookups() []*Attribute {
	var as []*Attribute
	for _, a := range f.Attributes {
		if a.Kind == KindLookup {
			as = append(as, a)
		}
	}
	return as
}

// Validate checks the fragment and all of its attributes.
func (f *Fragment) Validate() error {
	var errs []error
	if strings.TrimSpace(f.EntityName) == "" {
		errs = append(errs, errors.New("schema: fragment entity name is empty"))
	}
	if strings.TrimSpace(f.PackageName) == "" {
		errs = append(errs, fmt.Errorf("schema: fragment %q: package name is empty", f.EntityName))
	}
	if len(f.Attributes) == 0 {
		errs = append(errs, fmt.Errorf("schema: fragment %q: at least one attribute is required", f.EntityName))
	}
	if f.Paging && f.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("schema: fragment %q: paging requires a positive page size", f.EntityName))
	}
	seen := make(map[string]bool, len(f.Attributes))
	for _, a := range f.Attributes {
		if a == nil {
			errs = append(errs, fmt.Errorf("schema: fragment %q: nil attribute", f.EntityName))
			continue
		}
		key := strings.ToLower(strings.Join(strings.Fields(a.Name), " "))
		if seen[key] {
			errs = append(errs, fmt.Errorf("schema: fragment %q: duplicate attribute %q", f.EntityName, a.Name))
		}
		seen[key] = true
		if err := a.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DefaultView derives view options from the attribute filter and column flags
// and the fragment's paging settings. When no attribute is flagged as a
// column, the first attribute is used.
func (f *Fragment) DefaultView() *ViewOptions {
	v := &ViewOptions{Paging: f.Paging, PageSize: f.PageSize}
	for _, a := range f.Attributes {
		if a.Filter {
			v.FilterAttributeNames = append(v.FilterAttributeNames, a.Name)
		}
		if a.Column {
			v.ColumnAttributeNames = append(v.ColumnAttributeNames, a.Name)
		}
	}
	if len(v.ColumnAttributeNames) == 0 && len(f.Attributes) > 0 {
		v.ColumnAttributeNames = []string{f.Attributes[0].Name}
	}
	return v
}

// ViewOptions select the filter controls, result columns and paging of the
// generated list pages.
type ViewOptions struct {
	FilterAttributeNames []string `yaml:"filters,omitempty" json:"filters,omitempty" msgpack:"filters,omitempty"`
	// ColumnAttributeNames are the result columns; the first one links to the
	// detail page.
	ColumnAttributeNames []string `yaml:"columns" json:"columns" msgpack:"columns"`
	Paging               bool     `yaml:"paging,omitempty" json:"paging,omitempty" msgpack:"paging,omitempty"`
	PageSize             int      `yaml:"pageSize,omitempty" json:"pageSize,omitempty" msgpack:"pageSize,omitempty"`
}

// Validate checks that every filter and column name resolves in f.
func (v *ViewOptions) Validate(f *Fragment) error {
	var errs []error
	if len(v.ColumnAttributeNames) == 0 {
		errs = append(errs, fmt.Errorf("schema: view of %q: at least one column is required", f.EntityName))
	}
	if v.Paging && v.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("schema: view of %q: paging requires a positive page size", f.EntityName))
	}
	for _, group := range []struct {
		label string
		names []string
	}{{"filter", v.FilterAttributeNames}, {"column", v.ColumnAttributeNames}} {
		for _, n := range group.names {
			if _, ok := f.Attribute(n); !ok {
				errs = append(errs, fmt.Errorf("schema: view of %q: %s attribute %q not found", f.EntityName, group.label, n))
			}
		}
	}
	return errors.Join(errs...)
}

// Filters resolves the filter attributes in view order.
func (v *ViewOptions) Filters(f *Fragment) []*Attribute {
	return resolve(f, v.FilterAttributeNames)
}

// Columns resolves the column attributes in view order.
func (v *ViewOptions) Columns(f *Fragment) []*Attribute {
	return resolve(f, v.ColumnAttributeNames)
}

func resolve(f *Fragment, names []string) []*Attribute {
	as := make([]*Attribute, 0, len(names))
	for _, n := range names {
		if a, ok := f.Attribute(n); ok {
			as = append(as, a)
		}
	}
	return as
}

// Relationship links two previously generated fragments. The source side is
// the primary side of a many to one association.
type Relationship struct {
	Source string `yaml:"source" json:"source" msgpack:"source"`
	// SourceAttribute is displayed on the target's pages when the relationship
	// is bidirectional.
	SourceAttribute string `yaml:"sourceAttribute,omitempty" json:"sourceAttribute,omitempty" msgpack:"sourceAttribute,omitempty"`
	Target          string `yaml:"target" json:"target" msgpack:"target"`
	// TargetAttribute is displayed on the source's pages.
	TargetAttribute string      `yaml:"targetAttribute" json:"targetAttribute" msgpack:"targetAttribute"`
	Association     Association `yaml:"association" json:"association" msgpack:"association"`
	Bidirectional   bool        `yaml:"bidirectional,omitempty" json:"bidirectional,omitempty" msgpack:"bidirectional,omitempty"`
	SourceInView    bool        `yaml:"sourceInView,omitempty" json:"sourceInView,omitempty" msgpack:"sourceInView,omitempty"`
	TargetRequired  bool        `yaml:"targetRequired,omitempty" json:"targetRequired,omitempty" msgpack:"targetRequired,omitempty"`
	TargetInView    bool        `yaml:"targetInView,omitempty" json:"targetInView,omitempty" msgpack:"targetInView,omitempty"`
}

// IsManyToMany reports whether the association is many to many.
func (r *Relationship) IsManyToMany() bool { return r.Association == ManyToMany }

// Validate checks the relationship on its own. Whether both fragments exist
// and whether the pair is already related is checked by the generator.
func (r *Relationship) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Source) == "" {
		errs = append(errs, errors.New("schema: relationship source is empty"))
	}
	if strings.TrimSpace(r.Target) == "" {
		errs = append(errs, errors.New("schema: relationship target is empty"))
	}
	if r.Source != "" && strings.EqualFold(strings.TrimSpace(r.Source), strings.TrimSpace(r.Target)) {
		errs = append(errs, fmt.Errorf("schema: relationship source and target are both %q", r.Source))
	}
	if strings.TrimSpace(r.TargetAttribute) == "" {
		errs = append(errs, fmt.Errorf("schema: relationship %s -> %s: target attribute is empty", r.Source, r.Target))
	}
	if r.Bidirectional && strings.TrimSpace(r.SourceAttribute) == "" {
		errs = append(errs, fmt.Errorf("schema: relationship %s -> %s: bidirectional requires a source attribute", r.Source, r.Target))
	}
	if r.Association != ManyToOne && r.Association != ManyToMany {
		errs = append(errs, fmt.Errorf("schema: relationship %s -> %s: invalid association %s", r.Source, r.Target, r.Association))
	}
	return errors.Join(errs...)
}
