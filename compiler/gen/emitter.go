package gen

import (
	"strconv"
	"strings"

	"github.com/bws/jdgen/schema"
	"github.com/bws/jdgen/templates"
)

// Emitter names, in execution order.
const (
	EmitterConfiguration = "configuration"
	EmitterDataSource    = "datasource"
	EmitterView          = "view"
	EmitterProcess       = "process"
	EmitterSecurity      = "security"
	EmitterLookup        = "lookup"
	EmitterSQL           = "sql"
)

// Emitters returns the standard emitters in execution order. Every emitter
// shares the given catalog, which is never modified.
func Emitters(cat *templates.Catalog) []Emitter {
	return []Emitter{
		&configurationEmitter{base{EmitterConfiguration, cat}},
		&dataSourceEmitter{base{EmitterDataSource, cat}},
		&viewEmitter{base{EmitterView, cat}},
		&processEmitter{base{EmitterProcess, cat}},
		&securityEmitter{base{EmitterSecurity, cat}},
		&lookupEmitter{base{EmitterLookup, cat}},
		&sqlEmitter{base{EmitterSQL, cat}},
	}
}

// base carries what every emitter needs: its name and the catalog.
type base struct {
	name string
	cat  *templates.Catalog
}

// Name implements Emitter.
func (b base) Name() string { return b.name }

// text returns an empty builder bound to the emitter's catalog.
func (b base) text() *textBuilder { return &textBuilder{cat: b.cat} }

// fill renders a single template.
func (b base) fill(key string, tokens templates.Tokens) (string, error) {
	return b.cat.Fill(key, tokens)
}

// textBuilder accumulates rendered templates. The first error sticks and
// turns every later call into a no-op.
type textBuilder struct {
	cat *templates.Catalog
	b   strings.Builder
	err error
}

// add renders key and appends the result.
func (w *textBuilder) add(key string, tokens templates.Tokens) {
	if w.err != nil {
		return
	}
	s, err := w.cat.Fill(key, tokens)
	if err != nil {
		w.err = err
		return
	}
	w.b.WriteString(s)
}

// addLine is like add but terminates the result with a newline.
func (w *textBuilder) addLine(key string, tokens templates.Tokens) {
	if w.err != nil {
		return
	}
	s, err := w.cat.Fill(key, tokens)
	if err != nil {
		w.err = err
		return
	}
	w.b.WriteString(line(s))
}

// raw appends literal text.
func (w *textBuilder) raw(s string) {
	if w.err == nil {
		w.b.WriteString(s)
	}
}

// fail records an error that did not come from the catalog.
func (w *textBuilder) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Len returns the length of the text built so far.
func (w *textBuilder) Len() int { return w.b.Len() }

// String returns the text and the first error.
func (w *textBuilder) String() (string, error) {
	return w.b.String(), w.err
}

// Kind mappings shared by the emitters. Each switch covers every attribute
// kind.

// fieldType is the FieldTypes constant of a configuration field.
func fieldType(a *schema.Attribute) string {
	switch a.Kind {
	case schema.KindDate, schema.KindTime:
		return "DATE"
	case schema.KindBoolean:
		return "BOOLEAN"
	case schema.KindLookup:
		return "INTEGER"
	case schema.KindNumeric:
		if a.Scale > 0 {
			return "DOUBLE"
		}
		return "INTEGER"
	default:
		return "STRING"
	}
}

// converter is the converter expression of a configuration field.
func converter(a *schema.Attribute) string {
	switch a.Kind {
	case schema.KindBoolean:
		return "BooleanConverter.getInstance()"
	case schema.KindDate:
		return "DateConverter.getInstance()"
	case schema.KindTime:
		return "TimeConverter.getInstance()"
	case schema.KindLookup:
		return "NumberConverter.getInstance()"
	case schema.KindNumeric:
		if a.Scale > 0 {
			return "DecimalConverter.getInstance()"
		}
		return "NumberConverter.getInstance()"
	default:
		return "null"
	}
}

// javaType is the data object type of an attribute.
func javaType(a *schema.Attribute) string {
	switch a.Kind {
	case schema.KindNumeric:
		if a.Scale > 0 {
			return "Double"
		}
		return "Integer"
	case schema.KindDate, schema.KindTime:
		return "Date"
	case schema.KindBoolean:
		return "Boolean"
	case schema.KindLookup:
		return "Integer"
	default:
		return "String"
	}
}

// columnType is the data manager column binding type of an attribute.
func columnType(a *schema.Attribute) string {
	switch a.Kind {
	case schema.KindDate:
		return "DATE"
	case schema.KindTime:
		return "TIME"
	case schema.KindBoolean:
		return "BOOLEAN"
	case schema.KindLookup:
		return "INTEGER"
	case schema.KindNumeric:
		if a.Scale > 0 {
			return "DOUBLE"
		}
		return "INTEGER"
	default:
		return "STRING"
	}
}

// sqlType is the column data type in the entity script.
func sqlType(a *schema.Attribute) string {
	switch a.Kind {
	case schema.KindDate:
		return "DATE"
	case schema.KindTime:
		return "TIME"
	case schema.KindBoolean:
		return "CHAR(1)"
	case schema.KindLookup:
		return "INTEGER"
	case schema.KindNumeric:
		if a.Scale > 0 {
			return "NUMERIC(" + strconv.Itoa(a.Precision) + "," + strconv.Itoa(a.Scale) + ")"
		}
		return "INTEGER"
	default:
		return "VARCHAR(" + strconv.Itoa(a.MaxLength) + ")"
	}
}

// hasOperator reports whether a filter on the attribute has an operator
// field.
func hasOperator(a *schema.Attribute) bool {
	switch a.Kind {
	case schema.KindBoolean, schema.KindLookup:
		return false
	default:
		return true
	}
}

// containsByDefault reports whether a filter on the attribute matches
// substrings rather than whole values.
func containsByDefault(a *schema.Attribute) bool {
	return a.Kind.IsTextLike()
}

// defaultOperator is the FilterOperators constant a filter starts with.
func defaultOperator(a *schema.Attribute) string {
	if containsByDefault(a) {
		return "CONTAINS"
	}
	return "EQUALS"
}

// filterTemplate selects the filter control of an attribute. Only dates and
// times have their own operator control; every other operator kind uses the
// text control.
func filterTemplate(a *schema.Attribute) string {
	switch a.Kind {
	case schema.KindDate:
		return templates.JSPDateOperatorField
	case schema.KindTime:
		return templates.JSPTimeOperatorField
	case schema.KindBoolean:
		return templates.JSPBooleanListField
	case schema.KindLookup:
		if a.MultipleValues {
			return templates.JSPLookupMultipleField
		}
		return templates.JSPLookupField
	default:
		return templates.JSPTextOperatorField
	}
}

// entityFieldTemplate selects the edit page control of an attribute.
func entityFieldTemplate(a *schema.Attribute) string {
	switch a.Kind {
	case schema.KindMemo:
		return templates.JSPMemoEntityField
	case schema.KindEmail:
		return templates.JSPEmailEntityField
	case schema.KindPhoneNumber:
		return templates.JSPPhoneNumberEntityField
	case schema.KindDate:
		return templates.JSPDateEntityField
	case schema.KindTime:
		return templates.JSPTimeEntityField
	case schema.KindBoolean:
		return templates.JSPBooleanEntityField
	case schema.KindLookup:
		if a.MultipleValues {
			return templates.JSPLookupMultipleEntityField
		}
		return templates.JSPLookupEntityField
	default:
		return templates.JSPTextEntityField
	}
}

// columnTemplate selects the list page cell of an attribute.
func columnTemplate(a *schema.Attribute) string {
	if a.Kind == schema.KindLookup {
		if a.MultipleValues {
			return templates.JSPLookupMultipleColumn
		}
		return templates.JSPLookupColumn
	}
	return templates.JSPColumn
}

// filterMaxLength is the input length of a filter control.
func filterMaxLength(a *schema.Attribute) int {
	switch a.Kind {
	case schema.KindDate:
		return 10
	case schema.KindTime:
		return 5
	case schema.KindNumeric:
		if a.Scale > 0 {
			return a.Precision + 1
		}
		return a.Precision
	default:
		return a.MaxLength
	}
}

// entityMaxLength is the input length of an edit page control.
func entityMaxLength(a *schema.Attribute) int {
	if a.Kind == schema.KindNumeric {
		if a.Scale > 0 {
			return a.Precision + a.Scale + 1
		}
		return a.Precision
	}
	return a.MaxLength
}

func boolString(b bool) string { return strconv.FormatBool(b) }
