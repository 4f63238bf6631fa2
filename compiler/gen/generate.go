package gen

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"

	"github.com/bws/jdgen"
	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/load"
	"github.com/bws/jdgen/compiler/state"
	sqlschema "github.com/bws/jdgen/dialect/sql/schema"
	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/schema"
	"github.com/bws/jdgen/templates"
)

// Plan kinds, recorded in the state history.
const (
	KindInit         = "init"
	KindFragment     = "fragment"
	KindRelationship = "relationship"
	KindBatch        = "batch"
)

// File is one generated file of a plan.
type File struct {
	Path    string `json:"path"`
	Content []byte `json:"-"`
	// Created is false for files amended by the plan.
	Created bool `json:"created"`
}

// Plan is the validated result of one transaction. Nothing is written until
// Commit is called.
type Plan struct {
	RunID      string       `json:"runId"`
	Kind       string       `json:"kind"`
	Subjects   []string     `json:"subjects"`
	Files      []*File      `json:"files"`
	Symbols    []Symbol     `json:"symbols"`
	Categories []Category   `json:"categories"`
	Migration  string       `json:"migration,omitempty"`
	State      *state.State `json:"-"`
	Report     Report       `json:"report"`

	cfg *Config
}

// Report summarizes a plan.
type Report struct {
	Kind     string   `json:"kind"`
	Subjects []string `json:"subjects"`
	Created  []string `json:"created"`
	Updated  []string `json:"updated"`
	Symbols  int      `json:"symbols"`
	// Categories counts the lookup categories assigned by the plan.
	Categories int `json:"categories"`
	Tables     int `json:"tables"`
}

// count formats n followed by noun, pluralized unless n is one.
func count(n int, noun string) string {
	if n != 1 {
		noun = inflect.Pluralize(noun)
	}
	return strconv.Itoa(n) + " " + noun
}

// String returns a one line summary, for example
// "fragment Invoice: 9 files created, 4 files updated, 38 symbols".
func (r Report) String() string {
	var b strings.Builder
	b.WriteString(r.Kind)
	if len(r.Subjects) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(r.Subjects, ", "))
	}
	b.WriteString(": ")
	parts := []string{
		count(len(r.Created), "file") + " created",
		count(len(r.Updated), "file") + " updated",
		count(r.Symbols, "symbol"),
	}
	if r.Categories > 0 {
		parts = append(parts, count(r.Categories, "category"))
	}
	if r.Tables > 0 {
		parts = append(parts, count(r.Tables, "table"))
	}
	b.WriteString(strings.Join(parts, ", "))
	return b.String()
}

// Generator runs the emitters over fragment and relationship definitions.
// A Generator is safe for concurrent use; every call works on its own
// transaction.
type Generator struct {
	cfg      *Config
	emitters []Emitter
}

// New creates a generator with the standard emitters.
func New(opts ...Option) (*Generator, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg, emitters: Emitters(cfg.Catalog)}, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() *Config { return g.cfg }

// Emitters returns the emitters in execution order.
func (g *Generator) Emitters() []Emitter { return slices.Clone(g.emitters) }

var classDescriptions = map[string]string{
	state.FieldIds:       "Field identifiers.",
	state.ActionIds:      "Action identifiers.",
	state.PageIds:        "Page identifiers.",
	state.AttributeNames: "Request attribute names.",
	state.CategoryIds:    "Lookup category identifiers.",
}

// Init plans the project level documents every fragment amends: the constant
// classes, the application configuration, the header page and the three SQL
// scripts.
func (g *Generator) Init(ctx context.Context) (*Plan, error) {
	st := state.New(g.cfg.ConfigurationPackage)
	maps.Copy(st.Counters, g.cfg.Seeds)
	tx, err := newTx(g.cfg, st)
	if err != nil {
		return nil, err
	}
	pkg := g.cfg.ConfigurationPackage
	type project struct {
		path  string
		key   string
		token templates.Tokens
	}
	var docs []project
	for _, class := range state.SymbolClasses {
		docs = append(docs, project{g.cfg.ConstantsPath(class), templates.ProjectConstants, templates.Tokens{
			"CONFIG-PACKAGE-NAME": pkg,
			"CLASS-NAME":          class,
			"CLASS-DESCRIPTION":   classDescriptions[class],
		}})
	}
	docs = append(docs,
		project{g.cfg.ConfigurationPath(), templates.ProjectConfiguration, templates.Tokens{"CONFIG-PACKAGE-NAME": pkg}},
		project{g.cfg.HeaderPath(), templates.ProjectHeaderPage, templates.Tokens{"CONFIGURATION-PACKAGE-NAME": pkg}},
		project{g.cfg.SQLPath(EntitySQL), templates.ProjectEntitySQL, nil},
		project{g.cfg.SQLPath(SecuritySQL), templates.ProjectSecuritySQL, nil},
		project{g.cfg.SQLPath(CategorySQL), templates.ProjectCategorySQL, nil},
	)
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := tx.Fill(d.key, d.token)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Create(d.path, text); err != nil {
			return nil, err
		}
	}
	for _, id := range []string{ParentFieldID, ParentActionID, ParentPageID} {
		if _, err := tx.Allocate(alloc.Fields, state.FieldIds, id, fieldPrefix); err != nil {
			return nil, err
		}
	}
	return g.seal(tx, KindInit, nil)
}

// AddFragment plans the artifacts of a new fragment. A nil view uses the
// fragment's default view options.
func (g *Generator) AddFragment(ctx context.Context, st *state.State, f *schema.Fragment, v *schema.ViewOptions) (*Plan, error) {
	tx, err := g.begin(st)
	if err != nil {
		return nil, err
	}
	if err := g.fragment(ctx, tx, f, v); err != nil {
		return nil, err
	}
	return g.seal(tx, KindFragment, []string{f.EntityName})
}

// AddRelationship plans the artifacts of a relationship between two
// generated fragments.
func (g *Generator) AddRelationship(ctx context.Context, st *state.State, r *schema.Relationship) (*Plan, error) {
	tx, err := g.begin(st)
	if err != nil {
		return nil, err
	}
	if err := g.relationship(ctx, tx, r); err != nil {
		return nil, err
	}
	return g.seal(tx, KindRelationship, []string{relationshipSubject(r)})
}

// Batch plans several definitions as one transaction, in generation order.
// Either every definition is planned or none is.
func (g *Generator) Batch(ctx context.Context, st *state.State, defs load.Definitions) (*Plan, error) {
	ordered, err := defs.Order()
	if err != nil {
		return nil, err
	}
	tx, err := g.begin(st)
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(ordered))
	for _, d := range ordered {
		switch {
		case d.Fragment != nil:
			err = g.fragment(ctx, tx, d.Fragment, d.ViewOptions())
		case d.Relationship != nil:
			err = g.relationship(ctx, tx, d.Relationship)
		default:
			err = NewDefinitionError("", "", "empty definition in "+d.File, nil)
		}
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, d.Name())
	}
	return g.seal(tx, KindBatch, subjects)
}

func relationshipSubject(r *schema.Relationship) string {
	return naming.EntityCommon(r.Source) + " -> " + naming.EntityCommon(r.Target)
}

// begin starts a transaction over an initialized project state.
func (g *Generator) begin(st *state.State) (*Tx, error) {
	if st == nil {
		return nil, jdgen.ErrNotInitialized
	}
	if st.ConfigurationPackage != g.cfg.ConfigurationPackage {
		return nil, NewConfigError("ConfigurationPackage", g.cfg.ConfigurationPackage,
			"project was initialized with "+st.ConfigurationPackage)
	}
	return newTx(g.cfg, st)
}

func cloneFragment(f *schema.Fragment) *schema.Fragment {
	c := *f
	c.Attributes = make([]*schema.Attribute, len(f.Attributes))
	for i, a := range f.Attributes {
		ac := *a
		c.Attributes[i] = &ac
	}
	return &c
}

func cloneView(v *schema.ViewOptions) *schema.ViewOptions {
	c := *v
	c.FilterAttributeNames = slices.Clone(v.FilterAttributeNames)
	c.ColumnAttributeNames = slices.Clone(v.ColumnAttributeNames)
	return &c
}

// fragment checks a fragment against the transaction state and runs every
// emitter over it.
func (g *Generator) fragment(ctx context.Context, tx *Tx, f *schema.Fragment, v *schema.ViewOptions) error {
	if f == nil {
		return NewDefinitionError("", "", "fragment is nil", nil)
	}
	if err := f.Validate(); err != nil {
		return NewDefinitionError(f.EntityName, "", "invalid fragment", err)
	}
	if v == nil {
		v = f.DefaultView()
	}
	if err := v.Validate(f); err != nil {
		return NewDefinitionError(f.EntityName, "", "invalid view options", err)
	}
	f, v = cloneFragment(f), cloneView(v)
	if _, ok := tx.st.Fragment(f.EntityName); ok {
		return NewDefinitionError(f.EntityName, "", "fragment already generated",
			jdgen.NewDuplicateError("fragment", naming.EntityConstant(f.EntityName)))
	}
	in := &FragmentInput{Fragment: f, View: v, Names: fragmentNames(f)}
	if f.HasParent() {
		p, ok := tx.st.Fragment(f.ParentEntityName)
		if !ok {
			return NewDefinitionError(f.EntityName, "", "parent "+f.ParentEntityName+" has not been generated",
				jdgen.NewNotFoundErrorWithKey("fragment", naming.EntityConstant(f.ParentEntityName)))
		}
		pn := fragmentNames(p.Definition)
		in.Parent = &pn
	}
	tx.st.PutFragment(f, v)
	for _, e := range g.emitters {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx.log.Debug("emit fragment", "emitter", e.Name(), "entity", in.Names.Common)
		if err := e.EmitFragment(tx, in); err != nil {
			return emitterErr(e.Name(), in.Names.Common, err)
		}
	}
	return nil
}

// relationship checks a relationship against the transaction state and runs
// every emitter over it.
func (g *Generator) relationship(ctx context.Context, tx *Tx, r *schema.Relationship) error {
	if r == nil {
		return NewRelationshipError("", "", "relationship is nil", nil)
	}
	if err := r.Validate(); err != nil {
		return NewRelationshipError(r.Source, r.Target, "invalid relationship", err)
	}
	src, ok := tx.st.Fragment(r.Source)
	if !ok {
		return NewRelationshipError(r.Source, r.Target, "source has not been generated",
			jdgen.NewNotFoundErrorWithKey("fragment", naming.EntityConstant(r.Source)))
	}
	dst, ok := tx.st.Fragment(r.Target)
	if !ok {
		return NewRelationshipError(r.Source, r.Target, "target has not been generated",
			jdgen.NewNotFoundErrorWithKey("fragment", naming.EntityConstant(r.Target)))
	}
	if tx.st.HasRelationship(r.Source, r.Target) {
		return NewRelationshipError(r.Source, r.Target, "entities are already related",
			jdgen.NewDuplicateError("relationship", naming.ReferenceName(r.Source, r.Target)))
	}
	if _, ok := dst.Definition.Attribute(r.TargetAttribute); !ok {
		return NewRelationshipError(r.Source, r.Target, "target has no attribute "+r.TargetAttribute, nil)
	}
	if r.Bidirectional {
		if _, ok := src.Definition.Attribute(r.SourceAttribute); !ok {
			return NewRelationshipError(r.Source, r.Target, "source has no attribute "+r.SourceAttribute, nil)
		}
	}
	rc := *r
	tx.st.Relationships = append(tx.st.Relationships, &rc)
	in := &RelationshipInput{
		Relationship: &rc,
		Source:       src.Definition,
		Target:       dst.Definition,
		sides:        sides(&rc, src.Definition, dst.Definition),
	}
	subject := relationshipSubject(&rc)
	for _, e := range g.emitters {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx.log.Debug("emit relationship", "emitter", e.Name(), "relationship", subject)
		if err := e.EmitRelationship(tx, in); err != nil {
			return emitterErr(e.Name(), subject, err)
		}
	}
	return nil
}

// symbolRefRe matches a reference to a generated constant, for example
// FieldIds.INVOICE_NUMBER.
var symbolRefRe = regexp.MustCompile(`\b(FieldIds|ActionIds|PageIds|AttributeNames|CategoryIds)\.([A-Z][A-Z0-9_]*)\b`)

// validateSymbols checks that every constant referenced by a file of the
// transaction is defined.
func validateSymbols(st *state.State, files []*File) error {
	var errs []error
	seen := make(map[string]bool)
	for _, f := range files {
		for _, m := range symbolRefRe.FindAllStringSubmatch(string(f.Content), -1) {
			key := f.Path + " " + m[0]
			if seen[key] {
				continue
			}
			seen[key] = true
			if _, ok := st.Symbol(m[1], m[2]); !ok {
				errs = append(errs, NewValidationError(f.Path, m[0], "reference to undefined constant"))
			}
		}
	}
	return jdgen.NewAggregateError(errs...)
}

// validateTables checks the tables of the resulting project schema and that
// they only extend the tables of the base state.
func validateTables(base, st *state.State) (int, error) {
	tables := tablesOf(st)
	res := sqlschema.ValidateTables(tables, sqlschema.WithExternalTables(codeTable))
	res.Errors = append(res.Errors, sqlschema.ValidateDiff(tablesOf(base), tables).Errors...)
	var errs []error
	for _, e := range res.Errors {
		errs = append(errs, &ValidationError{Path: e.Table, Message: "invalid table", Cause: e})
	}
	return len(tables), jdgen.NewAggregateError(errs...)
}

// seal finishes a transaction: it stores the documents in the working state,
// validates cross references and tables and records the history entry.
func (g *Generator) seal(tx *Tx, kind string, subjects []string) (*Plan, error) {
	tx.finish()
	files := tx.files()
	if err := validateSymbols(tx.st, files); err != nil {
		return nil, err
	}
	tables, err := validateTables(tx.base, tx.st)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	paths := make([]string, len(files))
	report := Report{
		Kind:       kind,
		Subjects:   subjects,
		Symbols:    len(tx.symbols),
		Categories: len(tx.categories),
		Tables:     tables,
	}
	for i, f := range files {
		paths[i] = f.Path
		if f.Created {
			report.Created = append(report.Created, f.Path)
		} else {
			report.Updated = append(report.Updated, f.Path)
		}
	}
	tx.st.Record(&state.Entry{
		RunID:   runID,
		Kind:    kind,
		Subject: strings.Join(subjects, ", "),
		Time:    g.cfg.Clock(),
		Files:   paths,
	})
	p := &Plan{
		RunID:      runID,
		Kind:       kind,
		Subjects:   subjects,
		Files:      files,
		Symbols:    tx.symbols,
		Categories: tx.categories,
		Migration:  tx.migration.String(),
		State:      tx.st,
		Report:     report,
		cfg:        g.cfg,
	}
	g.cfg.Logger.Info("plan ready", "run", runID, "summary", report.String())
	return p, nil
}

// File returns the plan file at path.
func (p *Plan) File(path string) (*File, bool) {
	for _, f := range p.Files {
		if f.Path == path {
			return f, true
		}
	}
	return nil, false
}
