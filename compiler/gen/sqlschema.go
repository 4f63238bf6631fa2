package gen

import (
	"strings"

	atlas "ariga.io/atlas/sql/schema"

	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/schema"
	"github.com/bws/jdgen/templates"
)

// Standard columns every entity table carries after its attributes.
const (
	deletedColumn = "is_deleted"
	versionColumn = "version"
	domainColumn  = "domain_id"
)

// tableSet holds the atlas tables of a project. Tables referenced before they
// are built are represented by stubs that resolve replaces with the real
// tables.
type tableSet struct {
	byName map[string]*atlas.Table
	order  []*atlas.Table
	stubs  map[string]*atlas.Table
}

func newTableSet() *tableSet {
	return &tableSet{
		byName: make(map[string]*atlas.Table),
		stubs:  make(map[string]*atlas.Table),
	}
}

func (ts *tableSet) add(t *atlas.Table) {
	ts.byName[t.Name] = t
	ts.order = append(ts.order, t)
}

// Tables returns the built tables in build order.
func (ts *tableSet) Tables() []*atlas.Table { return ts.order }

// ref returns the table and id column a foreign key points to.
func (ts *tableSet) ref(table, idColumn string) (*atlas.Table, *atlas.Column) {
	t, ok := ts.byName[table]
	if !ok {
		if t, ok = ts.stubs[table]; !ok {
			t = atlas.NewTable(table).AddColumns(intColumn(idColumn, false))
			ts.stubs[table] = t
		}
	}
	c, ok := t.Column(idColumn)
	if !ok {
		c = intColumn(idColumn, false)
		t.AddColumns(c)
	}
	return t, c
}

// resolve points foreign keys at the real tables once they are built.
func (ts *tableSet) resolve() {
	for _, t := range ts.order {
		for _, fk := range t.ForeignKeys {
			real, ok := ts.byName[fk.RefTable.Name]
			if !ok || real == fk.RefTable {
				continue
			}
			cols := make([]*atlas.Column, 0, len(fk.RefColumns))
			for _, rc := range fk.RefColumns {
				if c, ok := real.Column(rc.Name); ok {
					cols = append(cols, c)
				} else {
					cols = append(cols, rc)
				}
			}
			fk.RefTable, fk.RefColumns = real, cols
		}
	}
}

func intColumn(name string, null bool) *atlas.Column {
	return &atlas.Column{
		Name: name,
		Type: &atlas.ColumnType{Type: &atlas.IntegerType{T: "integer"}, Raw: "INTEGER", Null: null},
	}
}

// attributeType is the atlas column type of an attribute.
func attributeType(a *schema.Attribute) *atlas.ColumnType {
	ct := &atlas.ColumnType{Raw: sqlType(a), Null: !a.Required && a.Kind != schema.KindBoolean}
	switch a.Kind {
	case schema.KindDate:
		ct.Type = &atlas.TimeType{T: "date"}
	case schema.KindTime:
		ct.Type = &atlas.TimeType{T: "time"}
	case schema.KindBoolean:
		ct.Type = &atlas.StringType{T: "char", Size: 1}
	case schema.KindLookup:
		ct.Type = &atlas.IntegerType{T: "integer"}
	case schema.KindNumeric:
		if a.Scale > 0 {
			ct.Type = &atlas.DecimalType{T: "numeric", Precision: a.Precision, Scale: a.Scale}
		} else {
			ct.Type = &atlas.IntegerType{T: "integer"}
		}
	default:
		ct.Type = &atlas.StringType{T: "varchar", Size: a.MaxLength}
	}
	return ct
}

func foreignKey(symbol string, t *atlas.Table, c *atlas.Column, ref *atlas.Table, rc *atlas.Column) *atlas.ForeignKey {
	return &atlas.ForeignKey{
		Symbol:     symbol,
		Table:      t,
		Columns:    []*atlas.Column{c},
		RefTable:   ref,
		RefColumns: []*atlas.Column{rc},
	}
}

// associate builds a join table between two entity tables, keyed by both id
// columns.
func (ts *tableSet) associate(name, parentTable, parentID, depTable, depID string) *atlas.Table {
	pc, dc := intColumn(parentID, false), intColumn(depID, false)
	t := atlas.NewTable(name).AddColumns(pc, dc)
	t.SetPrimaryKey(atlas.NewPrimaryKey(pc, dc).SetName("pk_" + name))
	pt, prc := ts.ref(parentTable, parentID)
	dt, drc := ts.ref(depTable, depID)
	t.AddForeignKeys(
		foreignKey("fk_"+name+"_"+parentTable, t, pc, pt, prc),
		foreignKey("fk_"+name+"_"+depTable, t, dc, dt, drc),
	)
	ts.add(t)
	return t
}

// fragment builds the entity table of a fragment and the join tables of its
// multi-valued lookups.
func (ts *tableSet) fragment(n EntityNames, f *schema.Fragment, parent *EntityNames) (*atlas.Table, []*atlas.Table) {
	id := intColumn(n.IDColumn, false)
	t := atlas.NewTable(n.Table).AddColumns(id)
	ts.add(t)
	var (
		lookups []*atlas.ForeignKey
		assoc   []*atlas.Table
	)
	for _, a := range f.Attributes {
		col := columnName(a.Name)
		if a.IsMultiLookup() {
			assoc = append(assoc, ts.associate(n.Table+"_"+col, n.Table, n.IDColumn, codeTable, codeIDColumn))
			continue
		}
		c := &atlas.Column{Name: col, Type: attributeType(a)}
		t.AddColumns(c)
		if a.Kind == schema.KindLookup {
			ref, rc := ts.ref(codeTable, codeIDColumn)
			lookups = append(lookups, foreignKey("fk_code_"+n.Table+"_"+col, t, c, ref, rc))
		}
	}
	var parentFK *atlas.ForeignKey
	if parent != nil {
		c := intColumn(parent.IDColumn, false)
		t.AddColumns(c)
		ref, rc := ts.ref(parent.Table, parent.IDColumn)
		parentFK = foreignKey("fk_"+n.Table, t, c, ref, rc)
	}
	deleted := &atlas.Column{
		Name: deletedColumn,
		Type: &atlas.ColumnType{Type: &atlas.StringType{T: "char", Size: 1}, Raw: "CHAR(1)"},
	}
	domain := intColumn(domainColumn, false)
	t.AddColumns(deleted, intColumn(versionColumn, false), domain)
	t.SetPrimaryKey(atlas.NewPrimaryKey(id).SetName("pk_" + n.Table))
	if parentFK != nil {
		t.AddForeignKeys(parentFK)
	}
	t.AddForeignKeys(lookups...)
	t.AddIndexes(atlas.NewIndex("idx_" + n.Table + "_1").AddColumns(domain))
	return t, assoc
}

// relationship adds the storage of a relationship: a join table for many to
// many, otherwise a nullable reference column on the source table.
func (ts *tableSet) relationship(r *schema.Relationship) (*atlas.Table, *atlas.ForeignKey) {
	src, dst := NamesOf(r.Source, ""), NamesOf(r.Target, "")
	if r.IsManyToMany() {
		return ts.associate(associateTable(src, dst), src.Table, src.IDColumn, dst.Table, dst.IDColumn), nil
	}
	t, _ := ts.ref(src.Table, src.IDColumn)
	c := intColumn(dst.IDColumn, true)
	t.AddColumns(c)
	ref, rc := ts.ref(dst.Table, dst.IDColumn)
	fk := foreignKey("fk_"+src.Table+"_"+dst.Table, t, c, ref, rc)
	t.AddForeignKeys(fk)
	return nil, fk
}

// tablesOf rebuilds the tables of every fragment and relationship recorded
// in st.
func tablesOf(st *state.State) []*atlas.Table {
	ts := newTableSet()
	for _, name := range st.FragmentNames() {
		f := st.Fragments[name]
		n := fragmentNames(f.Definition)
		var parent *EntityNames
		if f.Definition.HasParent() {
			p := NamesOf(f.Definition.ParentEntityName, "")
			parent = &p
		}
		ts.fragment(n, f.Definition, parent)
	}
	for _, r := range st.Relationships {
		ts.relationship(r)
	}
	ts.resolve()
	return ts.Tables()
}

// sqlEmitter appends table definitions to the entity script and records the
// same statements in the transaction's migration.
type sqlEmitter struct{ base }

const sqlOp = "updating entity SQL"

func (e *sqlEmitter) script(tx *Tx) (string, error) {
	path := tx.Config().SQLPath(EntitySQL)
	_, err := tx.Document(path, sqlOp, EntitySQL)
	return path, err
}

func columnNames(cs []*atlas.Column) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

func partNames(ps []*atlas.IndexPart) string {
	cs := make([]*atlas.Column, 0, len(ps))
	for _, p := range ps {
		cs = append(cs, p.C)
	}
	return columnNames(cs)
}

func nullability(c *atlas.Column) string {
	if c.Type.Null {
		return "NULL"
	}
	return "NOT NULL"
}

func (e *sqlEmitter) column(c *atlas.Column) (string, error) {
	return e.fill(templates.SQLColumn, templates.Tokens{
		"COLUMN-NAME": c.Name,
		"DATA-TYPE":   c.Type.Raw,
		"CONSTRAINT":  nullability(c),
	})
}

func (e *sqlEmitter) createTable(w *textBuilder, t *atlas.Table) {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		s, err := e.column(c)
		if err != nil {
			w.fail(err)
			return
		}
		defs = append(defs, s)
	}
	w.add(templates.SQLCreateTable, templates.Tokens{
		"TABLE-NAME":         t.Name,
		"COLUMN-DEFINITIONS": strings.Join(defs, ",\n"),
	})
}

func (e *sqlEmitter) foreignKey(w *textBuilder, fk *atlas.ForeignKey) {
	w.add(templates.SQLForeignKey, templates.Tokens{
		"TARGET-TABLE-NAME":       fk.Table.Name,
		"CONSTRAINT-NAME":         fk.Symbol,
		"TARGET-COLUMN-NAMES":     columnNames(fk.Columns),
		"REFERENCED-TABLE-NAME":   fk.RefTable.Name,
		"REFERENCED-COLUMN-NAMES": columnNames(fk.RefColumns),
	})
}

func (e *sqlEmitter) associateTable(w *textBuilder, t *atlas.Table) {
	parent, dep := t.ForeignKeys[0], t.ForeignKeys[1]
	w.add(templates.SQLAssociateTable, templates.Tokens{
		"ASSOCIATE-TABLE-NAME":     t.Name,
		"PARENT-TABLE-NAME":        parent.RefTable.Name,
		"PARENT-ID-COLUMN-NAME":    parent.Columns[0].Name,
		"DEPENDENT-TABLE-NAME":     dep.RefTable.Name,
		"DEPENDENT-ID-COLUMN-NAME": dep.Columns[0].Name,
	})
}

// EmitFragment implements Emitter.
func (e *sqlEmitter) EmitFragment(tx *Tx, in *FragmentInput) error {
	path, err := e.script(tx)
	if err != nil {
		return err
	}
	n := in.Names
	t, assoc := newTableSet().fragment(n, in.Fragment, in.Parent)

	w := e.text()
	w.raw("\n--\n-- " + n.Common + " table.\n--\n")
	e.createTable(w, t)
	w.add(templates.SQLPrimaryKey, templates.Tokens{
		"TABLE-NAME":      t.Name,
		"CONSTRAINT-NAME": t.PrimaryKey.Name,
		"COLUMN-NAMES":    partNames(t.PrimaryKey.Parts),
	})
	for _, fk := range t.ForeignKeys {
		e.foreignKey(w, fk)
	}
	for _, a := range assoc {
		e.associateTable(w, a)
	}
	for _, idx := range t.Indexes {
		w.add(templates.SQLIndex, templates.Tokens{
			"INDEX-NAME":   idx.Name,
			"TABLE-NAME":   t.Name,
			"COLUMN-NAMES": partNames(idx.Parts),
		})
	}
	w.add(templates.SQLSequence, templates.Tokens{
		"TABLE-NAME":  t.Name,
		"COLUMN-NAME": n.IDColumn,
	})
	text, err := w.String()
	if err != nil {
		return err
	}
	tx.recordMigration(text)
	return tx.Append(path, "statements", text)
}

// EmitRelationship implements Emitter.
func (e *sqlEmitter) EmitRelationship(tx *Tx, in *RelationshipInput) error {
	path, err := e.script(tx)
	if err != nil {
		return err
	}
	assoc, fk := newTableSet().relationship(in.Relationship)
	w := e.text()
	if assoc != nil {
		e.associateTable(w, assoc)
	} else {
		c, err := e.column(fk.Columns[0])
		if err != nil {
			return err
		}
		w.add(templates.SQLAlterTable, templates.Tokens{
			"TABLE-NAME":         fk.Table.Name,
			"COLUMN-DEFINITIONS": strings.TrimSpace(c),
		})
		e.foreignKey(w, fk)
	}
	text, err := w.String()
	if err != nil {
		return err
	}
	tx.recordMigration(text)
	return tx.Append(path, "statements", text)
}
