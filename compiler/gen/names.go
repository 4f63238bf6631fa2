package gen

import (
	"strings"

	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/schema"
)

// EntityNames holds every identifier derived from an entity name. All
// emitters derive names through it, so a field id computed by the
// configuration emitter and referenced by the view emitter are the same
// string.
type EntityNames struct {
	Common      string // Line Item
	Constant    string // LINE_ITEM
	Plural      string // LINE_ITEMS
	Upper       string // LineItem
	Lower       string // lineItem
	PluralUpper string // LineItems
	Description string // line item
	Package     string // com.acme.billing
	Table       string // line_item
	IDColumn    string // line_item_id
	Manager     string // LineItemManager
}

// NamesOf derives the names of the entity with the given reference, which
// may be a common, camel case or qualified class name.
func NamesOf(ref, pkg string) EntityNames {
	common := naming.EntityCommon(ref)
	constant := naming.CommonToConstant(common)
	upper := naming.UpperCamel(common)
	table := strings.ToLower(constant)
	return EntityNames{
		Common:      common,
		Constant:    constant,
		Plural:      strings.ToUpper(naming.Plural(constant)),
		Upper:       upper,
		Lower:       naming.LowerCamel(common),
		PluralUpper: naming.Plural(upper),
		Description: naming.AsSentence(common, false),
		Package:     pkg,
		Table:       table,
		IDColumn:    table + "_id",
		Manager:     upper + "Manager",
	}
}

// fragmentNames derives the names of a fragment definition.
func fragmentNames(f *schema.Fragment) EntityNames {
	return NamesOf(f.EntityName, f.PackageName)
}

// Field returns the id of a synthetic field, for example Field("ID").
func (n EntityNames) Field(suffix string) string { return n.Constant + "_" + suffix }

// AttributeField returns the field id of an attribute.
func (n EntityNames) AttributeField(name string) string {
	return n.Constant + "_" + naming.CommonToConstant(name)
}

// FilterField returns the filter field id of an attribute.
func (n EntityNames) FilterField(name string) string { return n.AttributeField(name) + "_FILTER" }

// OperatorField returns the filter operator field id of an attribute.
func (n EntityNames) OperatorField(name string) string { return n.FilterField(name) + "_OPERATOR" }

// ID returns the id field of the entity, which is also the parent id field of
// its children.
func (n EntityNames) ID() string { return n.Field("ID") }

// Action ids.
func (n EntityNames) ViewAction() string   { return "VIEW_" + n.Plural }
func (n EntityNames) AddAction() string    { return "ADD_" + n.Constant }
func (n EntityNames) EditAction() string   { return "EDIT_" + n.Constant }
func (n EntityNames) DeleteAction() string { return "DELETE_" + n.Constant }
func (n EntityNames) SaveAction() string   { return "SAVE_" + n.Constant }
func (n EntityNames) CancelAction() string { return "CANCEL_" + n.Constant }
func (n EntityNames) SelectAction() string { return "SELECT_" + n.Plural }
func (n EntityNames) SelectItemAction(op string) string {
	return "SELECT_" + n.Constant + "_" + op
}

// PagingAction returns a paging action of the view (family "VIEW") or select
// (family "SELECT") actions, for example PagingAction("VIEW", "NEXT_PAGE").
func (n EntityNames) PagingAction(family, op string) string {
	return family + "_" + n.Constant + "_" + op
}

// Page ids and attribute names.
func (n EntityNames) ListPage() string      { return n.Plural }
func (n EntityNames) EditPage() string      { return n.Constant }
func (n EntityNames) SelectionPage() string { return n.Constant + "_SELECTION" }
func (n EntityNames) SelectedPlural() string {
	return "SELECTED_" + n.Plural
}

// Class names.
func (n EntityNames) ViewClass() string   { return "View" + n.PluralUpper }
func (n EntityNames) SelectClass() string { return "Select" + n.PluralUpper }
func (n EntityNames) EditClass() string   { return "Edit" + n.Upper }
func (n EntityNames) DeleteClass() string { return "Delete" + n.Upper }
func (n EntityNames) SaveClass() string   { return "Save" + n.Upper }

// QualifiedClass returns the fully qualified name of a class in the entity
// package.
func (n EntityNames) QualifiedClass(class string) string {
	if n.Package == "" {
		return class
	}
	return n.Package + "." + class
}

// Paging operations, in allocation order.
var pagingOps = []string{"PREVIOUS_PAGE", "SELECT_PAGE", "NEXT_PAGE"}

// Selection operations, in allocation order.
var selectOps = []string{"ADD", "REMOVE", "CLOSE"}

// variableName converts a constant such as INVOICE_SORT_FIELD to the Java
// variable name invoiceSortField.
func variableName(constant string) string {
	return naming.LowerCamel(naming.ConstantToCommon(constant))
}

// propertyName converts a constant such as CUSTOMER_ID to the bean property
// name CustomerId.
func propertyName(constant string) string {
	return naming.UpperCamel(naming.ConstantToCommon(constant))
}

// side is one direction of a relationship: the primary entity gains a
// reference to the secondary one.
type side struct {
	primary, secondary       EntityNames
	primaryDef, secondaryDef *schema.Fragment
	// secondaryAttribute is displayed for the reference on primary pages.
	secondaryAttribute string
	// inView includes the reference column on the primary list page.
	inView   bool
	required bool
	forward  bool
	manyMany bool
}

// referenceField returns the field id of the reference: P_S_ID, or P_S_IDS
// for many to many relationships.
func (s side) referenceField() string {
	id := s.primary.Constant + "_" + s.secondary.Constant + "_ID"
	if s.manyMany {
		id += "S"
	}
	return id
}

// referenceLabel is the field label and security field name of the reference.
func (s side) referenceLabel() string {
	if s.manyMany {
		return naming.Plural(s.secondary.Common)
	}
	return s.secondary.Common
}

// referenceProperty is the data object property holding the reference.
func (s side) referenceProperty() string {
	if s.manyMany {
		return s.secondary.Upper + "Ids"
	}
	return s.secondary.Upper + "Id"
}

// referenceAttribute is the data object attribute holding the reference.
func (s side) referenceAttribute() string {
	if s.manyMany {
		return s.secondary.Lower + "Ids"
	}
	return s.secondary.Lower + "Id"
}

// associateTable is the single join table of a many to many relationship,
// named after the relationship source.
func associateTable(src, dst EntityNames) string {
	return src.Table + "_" + dst.Table
}

// sides returns the directions of a relationship that generate artifacts:
// source to target, and target to source when bidirectional.
func sides(r *schema.Relationship, src, dst *schema.Fragment) []side {
	s, t := fragmentNames(src), fragmentNames(dst)
	out := []side{{
		primary:            s,
		secondary:          t,
		primaryDef:         src,
		secondaryDef:       dst,
		secondaryAttribute: r.TargetAttribute,
		inView:             r.TargetInView,
		required:           r.TargetRequired,
		forward:            true,
		manyMany:           r.IsManyToMany(),
	}}
	if r.Bidirectional {
		out = append(out, side{
			primary:            t,
			secondary:          s,
			primaryDef:         dst,
			secondaryDef:       src,
			secondaryAttribute: r.SourceAttribute,
			inView:             r.SourceInView,
			manyMany:           r.IsManyToMany(),
		})
	}
	return out
}
