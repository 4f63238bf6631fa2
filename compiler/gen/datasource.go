package gen

import (
	"strings"

	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/schema"
	"github.com/bws/jdgen/templates"
)

// Lookup values live in the framework code table.
const (
	codeTable       = "bws_code"
	codeIDColumn    = "code_id"
	codeValueColumn = "name"
)

// dataSourceEmitter creates the data object and data manager classes of a
// fragment and extends them with relationship references.
type dataSourceEmitter struct{ base }

// columnName is the table column of an attribute.
func columnName(attr string) string {
	return strings.ToLower(naming.CommonToConstant(attr))
}

// EmitFragment implements Emitter.
func (e *dataSourceEmitter) EmitFragment(tx *Tx, in *FragmentInput) error {
	if err := e.dataObject(tx, in); err != nil {
		return err
	}
	return e.dataManager(tx, in)
}

// member renders the attribute and accessor statements of one data object
// property.
func (e *dataSourceEmitter) member(attrs, props *textBuilder, typ, attrName, property, attrDesc, propDesc string, list bool) {
	attrKey := templates.DSAttributeStatement
	getKey, setKey := templates.DSPropertyGetterStatement, templates.DSPropertySetterStatement
	if list {
		attrKey = templates.DSListAttributeStatement
		getKey, setKey = templates.DSListPropertyGetterStatement, templates.DSListPropertySetterStatement
	}
	attrs.add(attrKey, templates.Tokens{
		"ATTRIBUTE-DESCRIPTION": attrDesc,
		"ATTRIBUTE-TYPE":        typ,
		"ATTRIBUTE-NAME":        attrName,
	})
	tokens := templates.Tokens{
		"ATTRIBUTE-TYPE":       typ,
		"ATTRIBUTE-NAME":       attrName,
		"PROPERTY-NAME":        property,
		"PROPERTY-DESCRIPTION": propDesc,
	}
	props.add(getKey, tokens)
	props.add(setKey, tokens)
}

func (e *dataSourceEmitter) dataObject(tx *Tx, in *FragmentInput) error {
	n := in.Names
	text, err := e.fill(templates.DSDataObject, templates.Tokens{
		"PACKAGE-NAME":            n.Package,
		"DATA-OBJECT-DESCRIPTION": naming.AsSentence(n.Common, true),
		"DATA-OBJECT-CLASS-NAME":  n.Upper,
	})
	if err != nil {
		return err
	}
	path := tx.Config().ClassPath(n, n.Upper)
	if _, err := tx.Create(path, text); err != nil {
		return err
	}
	attrs, props := e.text(), e.text()
	var imports []string
	for _, a := range in.Fragment.Attributes {
		switch {
		case a.Kind == schema.KindDate || a.Kind == schema.KindTime:
			imports = append(imports, "java.util.Date")
		case a.IsMultiLookup():
			imports = append(imports, listImports...)
		}
		e.member(attrs, props, javaType(a), naming.LowerCamel(a.Name), naming.UpperCamel(a.Name),
			naming.AsSentence(a.Name, true), naming.AsSentence(a.Name, false), a.IsMultiLookup())
	}
	if p := in.Parent; p != nil {
		e.member(attrs, props, "Integer", p.Lower+"Id", p.Upper+"Id",
			naming.AsSentence(p.Common, true)+" ID", p.Description+" ID", false)
	}
	if err := e.imports(tx, path, imports...); err != nil {
		return err
	}
	for _, s := range []struct {
		slot string
		w    *textBuilder
	}{{"attributes", attrs}, {"properties", props}} {
		text, err := s.w.String()
		if err != nil {
			return err
		}
		if err := tx.Append(path, s.slot, text); err != nil {
			return err
		}
	}
	return nil
}

var listImports = []string{"java.util.ArrayList", "java.util.Collections", "java.util.List"}

// imports adds import statements to a data object, each at most once.
func (e *dataSourceEmitter) imports(tx *Tx, path string, classes ...string) error {
	for _, class := range classes {
		text, err := e.fill(templates.DSImportStatement, templates.Tokens{"IMPORT-CLASS-NAME": class})
		if err != nil {
			return err
		}
		if err := tx.AppendOnce(path, "imports", line(text)); err != nil {
			return err
		}
	}
	return nil
}

func (e *dataSourceEmitter) dataManager(tx *Tx, in *FragmentInput) error {
	n := in.Names
	text, err := e.fill(templates.DSDataManager, templates.Tokens{
		"PACKAGE-NAME":       n.Package,
		"ENTITY-DESCRIPTION": n.Description,
		"MANAGER-CLASS-NAME": n.Manager,
		"ENTITY-CLASS-NAME":  n.Upper,
		"ID-COLUMN-NAME":     n.IDColumn,
		"TABLE-NAME":         n.Table,
	})
	if err != nil {
		return err
	}
	path := tx.Config().ClassPath(n, n.Manager)
	if _, err := tx.Create(path, text); err != nil {
		return err
	}
	columns, associates := e.text(), e.text()
	for _, a := range in.Fragment.Attributes {
		switch {
		case a.IsMultiLookup():
			variable := naming.LowerCamel(a.Name) + "CodeIdColumnBinding"
			associates.add(templates.DSColumnBindingVariable, templates.Tokens{
				"VARIABLE-NAME": variable,
				"COLUMN-NAME":   codeIDColumn,
			})
			associates.add(templates.DSAssociateBindingReferenceStatement, templates.Tokens{
				"PROPERTY-NAME":            naming.UpperCamel(a.Name),
				"ASSOCIATE-TABLE-NAME":     n.Table + "_" + columnName(a.Name),
				"VARIABLE-NAME":            variable,
				"REFERENCE-TABLE-NAME":     codeTable,
				"REFERENCE-ID-COLUMN-NAME": codeIDColumn,
				"REFERENCE-COLUMN-NAME":    codeValueColumn,
			})
		case a.Kind == schema.KindLookup:
			columns.add(templates.DSColumnBindingReferenceStatement, templates.Tokens{
				"COLUMN-NAME":              columnName(a.Name),
				"COLUMN-TYPE":              columnType(a),
				"IS-UNIQUE-MEMBER":         "false",
				"IS-VIRTUAL-DELETE":        "false",
				"PROPERTY-NAME":            naming.UpperCamel(a.Name),
				"REFERENCE-TABLE-NAME":     codeTable,
				"REFERENCE-ID-COLUMN-NAME": codeIDColumn,
				"REFERENCE-COLUMN-NAME":    codeValueColumn,
			})
		default:
			columns.add(templates.DSColumnBindingStatement, templates.Tokens{
				"COLUMN-NAME":       columnName(a.Name),
				"COLUMN-TYPE":       columnType(a),
				"IS-UNIQUE-MEMBER":  "false",
				"IS-VIRTUAL-DELETE": "false",
				"PROPERTY-NAME":     naming.UpperCamel(a.Name),
			})
		}
	}
	if p := in.Parent; p != nil {
		columns.add(templates.DSColumnBindingStatement, templates.Tokens{
			"COLUMN-NAME":       p.IDColumn,
			"COLUMN-TYPE":       "INTEGER",
			"IS-UNIQUE-MEMBER":  "false",
			"IS-VIRTUAL-DELETE": "false",
			"PROPERTY-NAME":     p.Upper + "Id",
		})
	}
	for _, s := range []struct {
		slot string
		w    *textBuilder
	}{{"column-bindings", columns}, {"associate-bindings", associates}} {
		text, err := s.w.String()
		if err != nil {
			return err
		}
		if err := tx.Append(path, s.slot, text); err != nil {
			return err
		}
	}
	return nil
}

// EmitRelationship implements Emitter. A many to one reference is stored on
// the source only; a many to many reference is stored on every side through
// the single associate table.
func (e *dataSourceEmitter) EmitRelationship(tx *Tx, in *RelationshipInput) error {
	for _, s := range in.sides {
		if !s.manyMany && !s.forward {
			continue
		}
		if err := e.updateDataObject(tx, s); err != nil {
			return err
		}
		if err := e.updateDataManager(tx, in, s); err != nil {
			return err
		}
	}
	return nil
}

func (e *dataSourceEmitter) updateDataObject(tx *Tx, s side) error {
	p := s.primary
	path := tx.Config().ClassPath(p, p.Upper)
	if _, err := tx.Document(path, "updating data object information", p.QualifiedClass(p.Upper)+" class"); err != nil {
		return err
	}
	if s.manyMany {
		if err := e.imports(tx, path, listImports...); err != nil {
			return err
		}
	}
	attrs, props := e.text(), e.text()
	suffix := " ID"
	if s.manyMany {
		suffix += "s"
	}
	e.member(attrs, props, "Integer", s.referenceAttribute(), s.referenceProperty(),
		naming.AsSentence(s.secondary.Common, true)+suffix, s.secondary.Description+suffix, s.manyMany)
	a, err := attrs.String()
	if err != nil {
		return err
	}
	pr, err := props.String()
	if err != nil {
		return err
	}
	if err := tx.Append(path, "attributes", a); err != nil {
		return err
	}
	return tx.Append(path, "properties", pr)
}

func (e *dataSourceEmitter) updateDataManager(tx *Tx, in *RelationshipInput, s side) error {
	p, sec := s.primary, s.secondary
	path := tx.Config().ClassPath(p, p.Manager)
	if _, err := tx.Document(path, "updating "+strings.ToLower(p.Common)+" information", p.Manager+" class"); err != nil {
		return err
	}
	// The displayed column is the secondary attribute's own column, unless
	// the attribute is stored in an associate table.
	refColumn := ""
	if a, ok := s.secondaryDef.Attribute(s.secondaryAttribute); ok && !a.IsMultiLookup() {
		refColumn = columnName(a.Name)
	}
	w := e.text()
	if !s.manyMany {
		key := templates.DSColumnBindingStatement
		if refColumn != "" {
			key = templates.DSColumnBindingReferenceStatement
		}
		w.add(key, templates.Tokens{
			"COLUMN-NAME":              sec.IDColumn,
			"COLUMN-TYPE":              "INTEGER",
			"IS-UNIQUE-MEMBER":         "false",
			"IS-VIRTUAL-DELETE":        "false",
			"PROPERTY-NAME":            s.referenceProperty(),
			"REFERENCE-TABLE-NAME":     sec.Table,
			"REFERENCE-ID-COLUMN-NAME": sec.IDColumn,
			"REFERENCE-COLUMN-NAME":    refColumn,
		})
		text, err := w.String()
		if err != nil {
			return err
		}
		return tx.Append(path, "column-bindings", text)
	}
	table := associateTable(fragmentNames(in.Source), fragmentNames(in.Target))
	variable := sec.Lower + "IdColumnBinding"
	w.add(templates.DSColumnBindingVariable, templates.Tokens{
		"VARIABLE-NAME": variable,
		"COLUMN-NAME":   sec.IDColumn,
	})
	key := templates.DSAssociateBindingStatement
	if refColumn != "" {
		key = templates.DSAssociateBindingReferenceStatement
	}
	w.add(key, templates.Tokens{
		"PROPERTY-NAME":            s.referenceProperty(),
		"ASSOCIATE-TABLE-NAME":     table,
		"VARIABLE-NAME":            variable,
		"REFERENCE-TABLE-NAME":     sec.Table,
		"REFERENCE-ID-COLUMN-NAME": sec.IDColumn,
		"REFERENCE-COLUMN-NAME":    refColumn,
	})
	text, err := w.String()
	if err != nil {
		return err
	}
	return tx.Append(path, "associate-bindings", text)
}
