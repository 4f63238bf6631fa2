package gen

import (
	"strconv"
	"strings"

	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/doc"
	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/schema"
	"github.com/bws/jdgen/templates"
)

// Id prefixes of the allocated constants.
const (
	fieldPrefix  = "F"
	actionPrefix = "A"
	pagePrefix   = "P"
)

// Framework fields every select action carries so a selection page can
// return to the page that opened it.
const (
	ParentFieldID  = "PARENT_FIELD_ID"
	ParentActionID = "PARENT_ACTION_ID"
	ParentPageID   = "PARENT_PAGE_ID"
)

const configOp = "updating configuration information"

// saveFieldsSlot is the slot before the save action is registered.
func saveFieldsSlot(n EntityNames) string { return "action-fields:" + n.SaveAction() }

// bindingFieldsSlot is the slot before the object binding is registered.
func bindingFieldsSlot(n EntityNames) string { return "binding-fields:" + n.Lower }

// configurationEmitter registers fields, actions, pages and object bindings
// in a fragment configuration class, allocating every id it declares.
type configurationEmitter struct{ base }

// configBuilder renders one fragment configuration.
type configBuilder struct {
	tx *Tx
	in *FragmentInput
	n  EntityNames
	w  *textBuilder
}

// EmitFragment implements Emitter.
func (e *configurationEmitter) EmitFragment(tx *Tx, in *FragmentInput) error {
	for _, class := range []string{state.FieldIds, state.ActionIds, state.PageIds, state.AttributeNames} {
		if _, err := tx.Document(tx.Config().ConstantsPath(class), configOp, class+" class"); err != nil {
			return err
		}
	}
	project, err := tx.Document(tx.Config().ConfigurationPath(), configOp, "Configuration class")
	if err != nil {
		return err
	}
	n := in.Names
	text, err := e.fill(templates.ConfigConfiguration, templates.Tokens{
		"CONFIG-PACKAGE-NAME": tx.Config().ConfigurationPackage,
		"ENTITY-PACKAGE-NAME": n.Package,
		"ENTITY-NAME":         n.Upper,
	})
	if err != nil {
		return err
	}
	path := tx.Config().FragmentConfigurationPath(n)
	cfg, err := tx.Create(path, text)
	if err != nil {
		return err
	}
	b := &configBuilder{tx: tx, in: in, n: n}

	sections := []struct {
		slot  string
		build func() (string, error)
	}{
		{"fields", b.fields},
		{"actions", b.actions},
		{"pages", b.pages},
		{"bindings", b.binding},
	}
	for _, s := range sections {
		text, err := s.build()
		if err != nil {
			return err
		}
		if err := appendSlot(path, cfg, s.slot, text); err != nil {
			return err
		}
	}
	if err := b.attributeNames(); err != nil {
		return err
	}
	reg, err := e.fill(templates.ConfigAddFragmentConfiguration, templates.Tokens{"ENTITY-NAME": n.Upper})
	if err != nil {
		return err
	}
	return appendSlot(tx.Config().ConfigurationPath(), project, "fragment-configurations", reg)
}

// field allocates a field id and renders its declaration. rules are rendered
// between the declaration and the registration.
func (b *configBuilder) field(id, typ, label, conv string, rules func(name string)) {
	if b.w.err != nil {
		return
	}
	if _, err := b.tx.Allocate(alloc.Fields, state.FieldIds, id, fieldPrefix); err != nil {
		b.w.fail(err)
		return
	}
	name := variableName(id)
	b.w.add(templates.ConfigField, templates.Tokens{
		"FIELD-NAME":      name,
		"FIELD-ID":        id,
		"FIELD-TYPE":      typ,
		"FIELD-LABEL":     label,
		"FIELD-CONVERTER": conv,
	})
	if rules != nil {
		rules(name)
	}
	b.w.add(templates.ConfigAddFieldToFields, templates.Tokens{"FIELD-NAME": name})
}

// stringField declares a converter-less string field labelled after suffix.
func (b *configBuilder) stringField(suffix string) {
	b.field(b.n.Field(suffix), "STRING", naming.ConstantToCommon(suffix), "null", nil)
}

// attributeField declares the field of an attribute or of its filter.
func (b *configBuilder) attributeField(id string, a *schema.Attribute, filter bool) {
	label := naming.ConstantToCommon(naming.CommonToConstant(a.Name))
	b.field(id, fieldType(a), label, converter(a), func(name string) {
		tokens := templates.Tokens{"FIELD-NAME": name}
		switch {
		case a.Kind == schema.KindNumeric:
			tokens["VALUE-TYPE"] = strings.ToUpper(a.NumericValueType())
			tokens["PRECISION"] = strconv.Itoa(a.Precision)
			tokens["SCALE"] = strconv.Itoa(a.Scale)
			b.w.add(templates.ConfigAddNumberRule, tokens)
		case a.Kind == schema.KindDate || a.Kind == schema.KindTime:
			b.w.add(templates.ConfigAddConverterRule, tokens)
		case a.Kind == schema.KindMemo:
			tokens["MAX-LENGTH"] = strconv.Itoa(a.MaxLength)
			b.w.add(templates.ConfigAddMaxLengthRule, tokens)
		case !filter && a.Kind == schema.KindEmail:
			b.w.add(templates.ConfigAddEmailRule, tokens)
		case !filter && a.Kind == schema.KindPhoneNumber:
			b.w.add(templates.ConfigAddPhoneNumberRule, tokens)
		case !filter && a.Kind == schema.KindPostalCode:
			b.w.add(templates.ConfigAddPostalCodeRule, tokens)
		}
	})
}

func (b *configBuilder) fields() (string, error) {
	b.w = &textBuilder{cat: b.tx.cat}
	n := b.n
	b.field(n.ID(), "INTEGER", "ID", "NumberConverter.getInstance()", nil)
	b.field(n.Field("VERSION"), "LONG", "Version", "NumberConverter.getInstance()", nil)
	b.stringField("SORT_FIELD")
	b.stringField("SORT_DIRECTION")
	if b.in.Paging() {
		b.stringField("CURRENT_PAGE_NUMBER")
		b.stringField("SELECTED_PAGE_NUMBER")
	}
	if filters := b.in.Filters(); len(filters) > 0 {
		b.stringField("GROUP_STATE")
		for _, a := range filters {
			b.attributeField(n.FilterField(a.Name), a, true)
			if hasOperator(a) {
				b.field(n.OperatorField(a.Name), "STRING", "Operator", "null", nil)
			}
		}
	}
	for _, a := range b.in.Fragment.Attributes {
		b.attributeField(n.AttributeField(a.Name), a, false)
	}
	return b.w.String()
}

// action allocates an action id and renders the action with its processor
// factory. fields renders the action's field list; extra is placed right
// before the registration.
func (b *configBuilder) action(id, class, label string, fields func(name string), extra string) {
	if b.w.err != nil {
		return
	}
	if _, err := b.tx.Allocate(alloc.Actions, state.ActionIds, id, actionPrefix); err != nil {
		b.w.fail(err)
		return
	}
	name := variableName(id)
	b.w.add(templates.ConfigAction, templates.Tokens{
		"ACTION-NAME":  name,
		"ACTION-ID":    id,
		"ACTION-LABEL": label,
	})
	b.w.add(templates.ConfigAddProcessorFactory, templates.Tokens{
		"ACTION-NAME":  name,
		"ACTION-CLASS": class,
	})
	if fields != nil {
		fields(name)
	}
	b.w.raw(extra)
	b.w.add(templates.ConfigAddActionToActions, templates.Tokens{"ACTION-NAME": name})
}

func (b *configBuilder) actionField(action, field string, required bool) {
	b.w.add(templates.ConfigAddFieldToAction, templates.Tokens{
		"ACTION-NAME": action,
		"FIELD-ID":    field,
		"IS-REQUIRED": boolString(required),
	})
}

// listFields renders the fields of a view or select family action.
func (b *configBuilder) listFields(selectFamily, pagingAction bool) func(string) {
	return func(action string) {
		n := b.n
		if b.in.Parent != nil && !selectFamily {
			b.actionField(action, b.in.Parent.ID(), true)
		}
		if selectFamily {
			for _, id := range []string{ParentFieldID, ParentActionID, ParentPageID} {
				b.actionField(action, id, true)
			}
		}
		filters := b.in.Filters()
		for _, a := range filters {
			b.actionField(action, n.FilterField(a.Name), false)
			if hasOperator(a) {
				b.actionField(action, n.OperatorField(a.Name), false)
			}
		}
		if len(filters) > 0 {
			b.actionField(action, n.Field("GROUP_STATE"), false)
		}
		if b.in.Paging() || pagingAction {
			b.actionField(action, n.Field("CURRENT_PAGE_NUMBER"), false)
			b.actionField(action, n.Field("SELECTED_PAGE_NUMBER"), false)
		}
		b.actionField(action, n.Field("SORT_FIELD"), false)
		b.actionField(action, n.Field("SORT_DIRECTION"), false)
	}
}

func (b *configBuilder) actions() (string, error) {
	b.w = &textBuilder{cat: b.tx.cat}
	n := b.n
	parent := func(action string) {
		if b.in.Parent != nil {
			b.actionField(action, b.in.Parent.ID(), true)
		}
	}
	b.action(n.ViewAction(), n.ViewClass(), "Apply", b.listFields(false, false), "")
	b.action(n.AddAction(), n.EditClass(), "Add", nil, "")
	b.action(n.EditAction(), n.EditClass(), "Edit", func(action string) {
		b.actionField(action, n.ID(), true)
		parent(action)
	}, "")
	b.action(n.DeleteAction(), n.DeleteClass(), "Delete", func(action string) {
		b.actionField(action, n.ID(), true)
	}, "")
	b.action(n.SaveAction(), n.SaveClass(), "Save", func(action string) {
		b.actionField(action, n.ID(), false)
		b.actionField(action, n.Field("VERSION"), false)
		parent(action)
		for _, a := range b.in.Fragment.Attributes {
			b.actionField(action, n.AttributeField(a.Name), a.Required)
		}
	}, doc.Marker(saveFieldsSlot(n)))
	b.action(n.CancelAction(), n.ViewClass(), "Cancel", nil, "")
	b.action(n.SelectAction(), n.SelectClass(), "Apply", b.listFields(true, false), "")
	for _, op := range selectOps {
		b.action(n.SelectItemAction(op), n.SelectClass(), naming.ConstantToCommon(op), nil, "")
	}
	if b.in.Paging() {
		for _, family := range []struct {
			name, class string
			sel         bool
		}{
			{"VIEW", n.ViewClass(), false},
			{"SELECT", n.SelectClass(), true},
		} {
			for _, op := range pagingOps {
				b.action(n.PagingAction(family.name, op), family.class, naming.ConstantToCommon(op),
					b.listFields(family.sel, true), "")
			}
		}
	}
	return b.w.String()
}

func (b *configBuilder) pages() (string, error) {
	b.w = &textBuilder{cat: b.tx.cat}
	n := b.n
	for _, id := range []string{n.ListPage(), n.EditPage(), n.SelectionPage()} {
		if _, err := b.tx.Allocate(alloc.Pages, state.PageIds, id, pagePrefix); err != nil {
			return "", err
		}
		name := variableName(id)
		b.w.add(templates.ConfigPage, templates.Tokens{
			"PAGE-NAME":           name,
			"PAGE-ID":             id,
			"FILE-NAME":           n.Lower + "/" + propertyName(id),
			"DEFAULT-DESCRIPTION": naming.ConstantToCommon(id),
		})
		b.w.add(templates.ConfigAddPageToPages, templates.Tokens{"PAGE-NAME": name})
	}
	return b.w.String()
}

// attributeNames defines the request attributes of the entity pages.
func (b *configBuilder) attributeNames() error {
	n := b.n
	for _, name := range []string{n.EditPage(), n.ListPage(), n.SelectedPlural()} {
		if err := b.tx.Define(state.AttributeNames, "String", name, strconv.Quote(name)); err != nil {
			return err
		}
	}
	return nil
}

func (b *configBuilder) binding() (string, error) {
	b.w = &textBuilder{cat: b.tx.cat}
	n := b.n
	bind := func(field, property string) {
		b.w.add(templates.ConfigAddFieldToBinding, templates.Tokens{
			"BINDING-NAME":  n.Lower,
			"FIELD-ID":      field,
			"PROPERTY-NAME": property,
		})
	}
	b.w.add(templates.ConfigObjectBinding, templates.Tokens{
		"BINDING-NAME":  n.Lower,
		"BINDING-CLASS": n.Upper,
	})
	bind(n.ID(), "Id")
	bind(n.Field("VERSION"), "Version")
	if p := b.in.Parent; p != nil {
		bind(p.ID(), propertyName(p.ID()))
	}
	for _, a := range b.in.Fragment.Attributes {
		if a.IsMultiLookup() {
			b.w.add(templates.ConfigAddCollectionFieldToBinding, templates.Tokens{
				"BINDING-NAME":  n.Lower,
				"FIELD-ID":      n.AttributeField(a.Name),
				"PROPERTY-NAME": naming.UpperCamel(a.Name),
				"IS-COLLECTION": boolString(a.MultipleValues),
			})
			continue
		}
		bind(n.AttributeField(a.Name), naming.UpperCamel(a.Name))
	}
	b.w.raw(doc.Marker(bindingFieldsSlot(n)))
	b.w.add(templates.ConfigAddBindingToBindings, templates.Tokens{
		"BINDING-NAME":  n.Lower,
		"BINDING-CLASS": n.Upper,
	})
	return b.w.String()
}

// EmitRelationship implements Emitter. Each side gains a reference field, a
// save action field and an object binding entry.
func (e *configurationEmitter) EmitRelationship(tx *Tx, in *RelationshipInput) error {
	if _, err := tx.Document(tx.Config().ConstantsPath(state.FieldIds), configOp, "FieldIds class"); err != nil {
		return err
	}
	for _, s := range in.sides {
		path := tx.Config().FragmentConfigurationPath(s.primary)
		cfg, err := tx.Document(path, configOp, s.primary.Upper+"Configuration class")
		if err != nil {
			return err
		}
		id := s.referenceField()
		if _, err := tx.Allocate(alloc.Fields, state.FieldIds, id, fieldPrefix); err != nil {
			return err
		}
		name := variableName(id)
		w := e.text()
		w.add(templates.ConfigField, templates.Tokens{
			"FIELD-NAME":      name,
			"FIELD-ID":        id,
			"FIELD-TYPE":      "INTEGER",
			"FIELD-LABEL":     s.referenceLabel(),
			"FIELD-CONVERTER": "NumberConverter.getInstance()",
		})
		w.add(templates.ConfigAddFieldToFields, templates.Tokens{"FIELD-NAME": name})
		fields, err := w.String()
		if err != nil {
			return err
		}
		action, err := e.fill(templates.ConfigAddFieldToAction, templates.Tokens{
			"ACTION-NAME": variableName(s.primary.SaveAction()),
			"FIELD-ID":    id,
			"IS-REQUIRED": boolString(s.required),
		})
		if err != nil {
			return err
		}
		binding, err := e.fill(templates.ConfigAddCollectionFieldToBinding, templates.Tokens{
			"BINDING-NAME":  s.primary.Lower,
			"FIELD-ID":      id,
			"PROPERTY-NAME": s.referenceProperty(),
			"IS-COLLECTION": boolString(s.manyMany),
		})
		if err != nil {
			return err
		}
		for _, edit := range []struct{ slot, text string }{
			{"fields", fields},
			{saveFieldsSlot(s.primary), action},
			{bindingFieldsSlot(s.primary), binding},
		} {
			if err := appendSlot(path, cfg, edit.slot, edit.text); err != nil {
				return err
			}
		}
	}
	return nil
}
