package load

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/schema"
)

// Default payloads for GraphQL fields without sizing directives.
const (
	DefaultTextLength = 255
	DefaultMemoLength = 2000
	DefaultPrecision  = 10
	DefaultFloatScale = 2
)

// graphqlPrelude declares the scalars and directives understood by
// ParseGraphQL. Imported SDL must not redeclare them.
const graphqlPrelude = `
scalar Date
scalar Time
scalar Email
scalar Phone
scalar PostalCode
scalar Memo

directive @package(name: String!) on OBJECT
directive @parent(entity: String!) on OBJECT
directive @paging(size: Int!) on OBJECT
directive @size(max: Int!) on FIELD_DEFINITION
directive @numeric(precision: Int!, scale: Int = 0, valueType: String) on FIELD_DEFINITION
directive @filter on FIELD_DEFINITION
directive @column on FIELD_DEFINITION
directive @display on FIELD_DEFINITION
`

var rootTypes = map[string]bool{"Query": true, "Mutation": true, "Subscription": true}

// ParseGraphQL converts the object types of a GraphQL SDL document into
// fragment and relationship definitions.
//
// Scalars map to attribute kinds: String to TEXT, Int and Float to NUMERIC,
// Boolean to BOOLEAN, and the prelude scalars Date, Time, Email, Phone,
// PostalCode and Memo to their namesakes. An enum type becomes a lookup
// category named after the enum; a list of an enum is a multi-valued lookup.
// Non-null fields are required. A field of another object type becomes a
// many to one relationship, a list of one a many to many relationship; a pair
// referenced from both sides becomes one bidirectional relationship. ID
// fields are skipped because every table carries a synthetic id.
//
// Objects are placed in basePkg unless they carry @package.
func ParseGraphQL(name, src, basePkg string) (Definitions, error) {
	s, err := gqlparser.LoadSchema(
		&ast.Source{Name: "jdgen-prelude.graphql", Input: graphqlPrelude, BuiltIn: true},
		&ast.Source{Name: name, Input: src},
	)
	if err != nil {
		return nil, fmt.Errorf("load: graphql %s: %w", name, err)
	}
	var objects []*ast.Definition
	for _, def := range s.Types {
		if def.Kind != ast.Object || def.BuiltIn || rootTypes[def.Name] || strings.HasPrefix(def.Name, "__") {
			continue
		}
		objects = append(objects, def)
	}
	slices.SortFunc(objects, func(a, b *ast.Definition) int {
		return cmp.Compare(line(a.Position), line(b.Position))
	})
	var (
		ds   Definitions
		rels []*schema.Relationship
		frag = make(map[string]*schema.Fragment, len(objects))
	)
	for _, def := range objects {
		f, err := objectFragment(s, def, basePkg)
		if err != nil {
			return nil, fmt.Errorf("load: graphql %s: type %s: %w", name, def.Name, err)
		}
		frag[def.Name] = f
		ds = append(ds, &Definition{File: name, Fragment: f})
	}
	for _, def := range objects {
		for _, fd := range def.Fields {
			target := s.Types[fd.Type.Name()]
			if target == nil || target.Kind != ast.Object || frag[target.Name] == nil {
				continue
			}
			assoc := schema.ManyToOne
			if fd.Type.Elem != nil {
				assoc = schema.ManyToMany
			}
			src, dst := frag[def.Name], frag[target.Name]
			if r := findRelationship(rels, src.EntityName, dst.EntityName); r != nil {
				if r.Target != src.EntityName || r.Bidirectional {
					continue
				}
				r.Bidirectional = true
				if r.Association == schema.ManyToMany && assoc == schema.ManyToOne {
					// A list on one side and a single reference on the other:
					// the single side owns the reference column.
					*r = schema.Relationship{
						Source:          src.EntityName,
						SourceAttribute: r.TargetAttribute,
						Target:          dst.EntityName,
						TargetAttribute: displayAttribute(target, dst),
						Association:     schema.ManyToOne,
						Bidirectional:   true,
						SourceInView:    r.TargetInView,
						TargetRequired:  fd.Type.NonNull,
						TargetInView:    fd.Directives.ForName("column") != nil,
					}
					continue
				}
				r.SourceAttribute = displayAttribute(target, dst)
				r.SourceInView = fd.Directives.ForName("column") != nil
				continue
			}
			rels = append(rels, &schema.Relationship{
				Source:          src.EntityName,
				Target:          dst.EntityName,
				TargetAttribute: displayAttribute(target, dst),
				Association:     assoc,
				TargetRequired:  fd.Type.NonNull && assoc == schema.ManyToOne,
				TargetInView:    fd.Directives.ForName("column") != nil,
			})
		}
	}
	for _, r := range rels {
		ds = append(ds, &Definition{File: name, Relationship: r})
	}
	return ds, nil
}

func line(p *ast.Position) int {
	if p == nil {
		return 0
	}
	return p.Line
}

func findRelationship(rels []*schema.Relationship, a, b string) *schema.Relationship {
	for _, r := range rels {
		if (r.Source == a && r.Target == b) || (r.Source == b && r.Target == a) {
			return r
		}
	}
	return nil
}

// displayAttribute returns the attribute of f marked @display in def, or the
// first attribute.
func displayAttribute(def *ast.Definition, f *schema.Fragment) string {
	for _, fd := range def.Fields {
		if fd.Directives.ForName("display") != nil {
			return naming.CamelToCommon(fd.Name)
		}
	}
	if len(f.Attributes) > 0 {
		return f.Attributes[0].Name
	}
	return ""
}

func objectFragment(s *ast.Schema, def *ast.Definition, basePkg string) (*schema.Fragment, error) {
	f := &schema.Fragment{
		EntityName:  naming.CamelToCommon(def.Name),
		PackageName: basePkg,
	}
	if d := def.Directives.ForName("package"); d != nil {
		f.PackageName = stringArg(d, "name")
	}
	if d := def.Directives.ForName("parent"); d != nil {
		f.ParentEntityName = naming.EntityCommon(stringArg(d, "entity"))
	}
	if d := def.Directives.ForName("paging"); d != nil {
		size, err := intArg(d, "size", 0)
		if err != nil {
			return nil, err
		}
		f.Paging, f.PageSize = true, size
	}
	for _, fd := range def.Fields {
		a, err := fieldAttribute(s, fd)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name, err)
		}
		if a != nil {
			f.Attributes = append(f.Attributes, a)
		}
	}
	return f, nil
}

// fieldAttribute maps a field to an attribute. It returns nil for fields that
// do not map to a column: ids and object references.
func fieldAttribute(s *ast.Schema, fd *ast.FieldDefinition) (*schema.Attribute, error) {
	typ := fd.Type.Name()
	a := &schema.Attribute{
		Name:     naming.CamelToCommon(fd.Name),
		Required: fd.Type.NonNull,
		Filter:   fd.Directives.ForName("filter") != nil,
		Column:   fd.Directives.ForName("column") != nil,
	}
	list := fd.Type.Elem != nil
	if def := s.Types[typ]; def != nil && def.Kind == ast.Enum {
		a.Kind = schema.KindLookup
		a.CategoryName = naming.CamelToCommon(def.Name)
		a.MultipleValues = list
		return a, nil
	}
	if list {
		if def := s.Types[typ]; def != nil && def.Kind == ast.Object {
			return nil, nil
		}
		return nil, fmt.Errorf("lists of %s are not supported", typ)
	}
	switch typ {
	case "ID":
		return nil, nil
	case "String":
		a.Kind, a.MaxLength = schema.KindText, DefaultTextLength
	case "Memo":
		a.Kind, a.MaxLength = schema.KindMemo, DefaultMemoLength
	case "Email":
		a.Kind, a.MaxLength = schema.KindEmail, DefaultTextLength
	case "Phone":
		a.Kind, a.MaxLength = schema.KindPhoneNumber, 20
	case "PostalCode":
		a.Kind, a.MaxLength = schema.KindPostalCode, 10
	case "Int":
		a.Kind, a.Precision, a.ValueType = schema.KindNumeric, DefaultPrecision, schema.ValueTypeAny
	case "Float":
		a.Kind, a.Precision, a.Scale, a.ValueType = schema.KindNumeric, DefaultPrecision, DefaultFloatScale, schema.ValueTypeAny
	case "Boolean":
		a.Kind = schema.KindBoolean
	case "Date":
		a.Kind = schema.KindDate
	case "Time":
		a.Kind = schema.KindTime
	default:
		if def := s.Types[typ]; def != nil && def.Kind == ast.Object {
			return nil, nil
		}
		return nil, fmt.Errorf("unsupported type %s", typ)
	}
	if d := fd.Directives.ForName("size"); d != nil {
		if !a.Kind.IsTextLike() {
			return nil, fmt.Errorf("@size on %s", a.Kind)
		}
		n, err := intArg(d, "max", 0)
		if err != nil {
			return nil, err
		}
		a.MaxLength = n
	}
	if d := fd.Directives.ForName("numeric"); d != nil {
		if a.Kind != schema.KindNumeric {
			return nil, fmt.Errorf("@numeric on %s", a.Kind)
		}
		p, err := intArg(d, "precision", DefaultPrecision)
		if err != nil {
			return nil, err
		}
		sc, err := intArg(d, "scale", 0)
		if err != nil {
			return nil, err
		}
		a.Precision, a.Scale = p, sc
		if vt := stringArg(d, "valueType"); vt != "" {
			a.ValueType = vt
		}
	}
	return a, nil
}

func stringArg(d *ast.Directive, name string) string {
	if arg := d.Arguments.ForName(name); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return ""
}

func intArg(d *ast.Directive, name string, def int) (int, error) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return def, nil
	}
	n, err := strconv.Atoi(arg.Value.Raw)
	if err != nil {
		return 0, fmt.Errorf("@%s(%s): %w", d.Name, name, err)
	}
	return n, nil
}
