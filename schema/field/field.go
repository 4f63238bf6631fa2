package field

import "github.com/bws/jdgen/schema"

// Text returns a builder for a TEXT attribute with the given maximum length.
func Text(name string, maxLen int) *textBuilder {
	return &textBuilder{&schema.Attribute{Name: name, Kind: schema.KindText, MaxLength: maxLen}}
}

// Memo returns a builder for a MEMO attribute.
func Memo(name string, maxLen int) *textBuilder {
	return &textBuilder{&schema.Attribute{Name: name, Kind: schema.KindMemo, MaxLength: maxLen}}
}

// Email returns a builder for an EMAIL attribute.
func Email(name string, maxLen int) *textBuilder {
	return &textBuilder{&schema.Attribute{Name: name, Kind: schema.KindEmail, MaxLength: maxLen}}
}

// PhoneNumber returns a builder for a PHONE_NUMBER attribute.
func PhoneNumber(name string, maxLen int) *textBuilder {
	return &textBuilder{&schema.Attribute{Name: name, Kind: schema.KindPhoneNumber, MaxLength: maxLen}}
}

// PostalCode returns a builder for a POSTAL_CODE attribute.
func PostalCode(name string, maxLen int) *textBuilder {
	return &textBuilder{&schema.Attribute{Name: name, Kind: schema.KindPostalCode, MaxLength: maxLen}}
}

// textBuilder is the builder for bounded string attributes.
type textBuilder struct {
	desc *schema.Attribute
}

// MaxLen overrides the maximum length.
func (b *textBuilder) MaxLen(n int) *textBuilder {
	b.desc.MaxLength = n
	return b
}

// Required marks the attribute as required.
func (b *textBuilder) Required() *textBuilder {
	b.desc.Required = true
	return b
}

// Filter includes the attribute in the search filter panel.
func (b *textBuilder) Filter() *textBuilder {
	b.desc.Filter = true
	return b
}

// Column includes the attribute in the search results.
func (b *textBuilder) Column() *textBuilder {
	b.desc.Column = true
	return b
}

// Descriptor implements the Builder interface.
func (b *textBuilder) Descriptor() *schema.Attribute { return b.desc }

// Numeric returns a builder for a NUMERIC attribute. The value type defaults
// to Any and the scale to zero.
func Numeric(name string) *numericBuilder {
	return &numericBuilder{&schema.Attribute{Name: name, Kind: schema.KindNumeric, ValueType: schema.ValueTypeAny}}
}

// numericBuilder is the builder for numeric attributes.
type numericBuilder struct {
	desc *schema.Attribute
}

// Precision sets the total number of digits.
func (b *numericBuilder) Precision(p int) *numericBuilder {
	b.desc.Precision = p
	return b
}

// Scale sets the number of fraction digits. A zero scale maps to an integer
// column and property.
func (b *numericBuilder) Scale(s int) *numericBuilder {
	b.desc.Scale = s
	return b
}

// Positive restricts values to positive numbers.
func (b *numericBuilder) Positive() *numericBuilder {
	b.desc.ValueType = schema.ValueTypePositive
	return b
}

// Negative restricts values to negative numbers.
func (b *numericBuilder) Negative() *numericBuilder {
	b.desc.ValueType = schema.ValueTypeNegative
	return b
}

// Required marks the attribute as required.
func (b *numericBuilder) Required() *numericBuilder {
	b.desc.Required = true
	return b
}

// Filter includes the attribute in the search filter panel.
func (b *numericBuilder) Filter() *numericBuilder {
	b.desc.Filter = true
	return b
}

// Column includes the attribute in the search results.
func (b *numericBuilder) Column() *numericBuilder {
	b.desc.Column = true
	return b
}

// Descriptor implements the Builder interface.
func (b *numericBuilder) Descriptor() *schema.Attribute { return b.desc }

// Date returns a builder for a DATE attribute.
func Date(name string) *plainBuilder {
	return &plainBuilder{&schema.Attribute{Name: name, Kind: schema.KindDate}}
}

// Time returns a builder for a TIME attribute.
func Time(name string) *plainBuilder {
	return &plainBuilder{&schema.Attribute{Name: name, Kind: schema.KindTime}}
}

// Bool returns a builder for a BOOLEAN attribute.
func Bool(name string) *plainBuilder {
	return &plainBuilder{&schema.Attribute{Name: name, Kind: schema.KindBoolean}}
}

// plainBuilder is the builder for kinds without a payload.
type plainBuilder struct {
	desc *schema.Attribute
}

// Required marks the attribute as required.
func (b *plainBuilder) Required() *plainBuilder {
	b.desc.Required = true
	return b
}

// Filter includes the attribute in the search filter panel.
func (b *plainBuilder) Filter() *plainBuilder {
	b.desc.Filter = true
	return b
}

// Column includes the attribute in the search results.
func (b *plainBuilder) Column() *plainBuilder {
	b.desc.Column = true
	return b
}

// Descriptor implements the Builder interface.
func (b *plainBuilder) Descriptor() *schema.Attribute { return b.desc }

// Lookup returns a builder for a LOOKUP attribute referencing the named
// category.
func Lookup(name, category string) *lookupBuilder {
	return &lookupBuilder{&schema.Attribute{Name: name, Kind: schema.KindLookup, CategoryName: category}}
}

// lookupBuilder is the builder for lookup attributes.
type lookupBuilder struct {
	desc *schema.Attribute
}

// CategoryID pins the category id instead of letting the generator allocate
// one.
func (b *lookupBuilder) CategoryID(id int) *lookupBuilder {
	b.desc.CategoryID = id
	return b
}

// Multiple stores several values in an associative table.
func (b *lookupBuilder) Multiple() *lookupBuilder {
	b.desc.MultipleValues = true
	return b
}

// Required marks the attribute as required.
func (b *lookupBuilder) Required() *lookupBuilder {
	b.desc.Required = true
	return b
}

// Filter includes the attribute in the search filter panel.
func (b *lookupBuilder) Filter() *lookupBuilder {
	b.desc.Filter = true
	return b
}

// Column includes the attribute in the search results.
func (b *lookupBuilder) Column() *lookupBuilder {
	b.desc.Column = true
	return b
}

// Descriptor implements the Builder interface.
func (b *lookupBuilder) Descriptor() *schema.Attribute { return b.desc }

// Builder is implemented by every attribute builder.
type Builder interface {
	Descriptor() *schema.Attribute
}

// Attributes collects the descriptors of the given builders.
func Attributes(bs ...Builder) []*schema.Attribute {
	as := make([]*schema.Attribute, len(bs))
	for i, b := range bs {
		as[i] = b.Descriptor()
	}
	return as
}
