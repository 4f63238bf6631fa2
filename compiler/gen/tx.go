package gen

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/bws/jdgen"
	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/doc"
	"github.com/bws/jdgen/compiler/state"
	"github.com/bws/jdgen/schema"
	"github.com/bws/jdgen/templates"
)

// Emitter produces one family of artifacts. Emitters run sequentially in a
// fixed order inside one transaction and never write files themselves.
type Emitter interface {
	// Name identifies the emitter in errors and logs.
	Name() string
	// EmitFragment generates the artifacts of a new fragment.
	EmitFragment(tx *Tx, in *FragmentInput) error
	// EmitRelationship amends the artifacts of two related fragments.
	EmitRelationship(tx *Tx, in *RelationshipInput) error
}

// FragmentInput is the definition being generated, with its derived names.
type FragmentInput struct {
	Fragment *schema.Fragment
	View     *schema.ViewOptions
	Names    EntityNames
	// Parent is nil for top level entities.
	Parent *EntityNames
}

// Filters returns the filter attributes in view order.
func (in *FragmentInput) Filters() []*schema.Attribute { return in.View.Filters(in.Fragment) }

// Columns returns the column attributes in view order.
func (in *FragmentInput) Columns() []*schema.Attribute { return in.View.Columns(in.Fragment) }

// Paging reports whether list pages are paged.
func (in *FragmentInput) Paging() bool { return in.View.Paging }

// RelationshipInput is the relationship being generated and both fragments.
type RelationshipInput struct {
	Relationship *schema.Relationship
	Source       *schema.Fragment
	Target       *schema.Fragment
	sides        []side
}

// Symbol is a constant defined by a transaction.
type Symbol struct {
	Class string `json:"class"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Category is a lookup category id assigned by a transaction.
type Category struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
	// Observed is set when the id was supplied by the definition.
	Observed bool `json:"observed,omitempty"`
}

// Tx is one generation transaction. It owns a working copy of the project
// state and collects every document an emitter creates or amends. Nothing is
// written until the resulting plan is committed.
type Tx struct {
	cfg   *Config
	cat   *templates.Catalog
	log   *slog.Logger
	base  *state.State
	st    *state.State
	alloc *alloc.Allocator

	docs    map[string]*doc.Document
	created map[string]bool
	// plain holds generated files that are never amended and not stored.
	plain map[string]string
	order []string

	symbols    []Symbol
	categories []Category
	migration  strings.Builder
}

// newTx starts a transaction over a clone of base.
func newTx(cfg *Config, base *state.State) (*Tx, error) {
	st, err := base.Clone()
	if err != nil {
		return nil, err
	}
	return &Tx{
		cfg:     cfg,
		cat:     cfg.Catalog,
		log:     cfg.Logger,
		base:    base,
		st:      st,
		alloc:   alloc.New(st.Counters),
		docs:    make(map[string]*doc.Document),
		created: make(map[string]bool),
		plain:   make(map[string]string),
	}, nil
}

// State returns the working state.
func (tx *Tx) State() *state.State { return tx.st }

// Config returns the generator configuration.
func (tx *Tx) Config() *Config { return tx.cfg }

// Fill renders a catalog template.
func (tx *Tx) Fill(key string, tokens templates.Tokens) (string, error) {
	return tx.cat.Fill(key, tokens)
}

func (tx *Tx) touch(path string) {
	if !slices.Contains(tx.order, path) {
		tx.order = append(tx.order, path)
	}
}

func (tx *Tx) exists(path string) bool {
	if _, ok := tx.docs[path]; ok {
		return true
	}
	if _, ok := tx.plain[path]; ok {
		return true
	}
	_, ok := tx.st.Documents[path]
	return ok
}

// Create adds a new amendable document built from text with slot markers.
func (tx *Tx) Create(path, text string) (*doc.Document, error) {
	if tx.exists(path) {
		return nil, jdgen.NewDuplicateError("document", path)
	}
	d, err := doc.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	tx.docs[path] = d
	tx.created[path] = true
	tx.touch(path)
	tx.log.Debug("create document", "path", path)
	return d, nil
}

// Write adds a generated file that later transactions never amend.
func (tx *Tx) Write(path, text string) error {
	if tx.exists(path) {
		return jdgen.NewDuplicateError("document", path)
	}
	tx.plain[path] = text
	tx.created[path] = true
	tx.touch(path)
	tx.log.Debug("write file", "path", path)
	return nil
}

// Document returns the document at path, loading it from the state on first
// use. A document that was never generated is a missing prerequisite of op.
func (tx *Tx) Document(path, op, artifact string) (*doc.Document, error) {
	if d, ok := tx.docs[path]; ok {
		return d, nil
	}
	d, err := tx.st.Document(path)
	if jdgen.IsNotFound(err) {
		return nil, NewPrerequisiteError(op, artifact, path)
	}
	if err != nil {
		return nil, err
	}
	tx.docs[path] = d
	tx.touch(path)
	return d, nil
}

// Append adds text to a slot of an already loaded or created document.
func (tx *Tx) Append(path, slot, text string) error {
	d, ok := tx.docs[path]
	if !ok {
		return NewPrerequisiteError("appending to "+slot, "document", path)
	}
	return appendSlot(path, d, slot, text)
}

// AppendOnce is like Append but skips text already present in the slot region.
func (tx *Tx) AppendOnce(path, slot, text string) error {
	d, ok := tx.docs[path]
	if !ok {
		return NewPrerequisiteError("appending to "+slot, "document", path)
	}
	if _, err := d.AppendOnce(slot, text); err != nil {
		return anchorErr(path, slot, err)
	}
	return nil
}

func appendSlot(path string, d *doc.Document, slot, text string) error {
	if err := d.Append(slot, text); err != nil {
		return anchorErr(path, slot, err)
	}
	return nil
}

func anchorErr(path, slot string, err error) error {
	if jdgen.IsNotFound(err) {
		return NewAnchorError(path, slot, err)
	}
	return fmt.Errorf("%s: %w", path, err)
}

// Allocate hands out the next id of ns and defines it as a string constant of
// class, for example FieldIds.INVOICE_ID = "F12".
func (tx *Tx) Allocate(ns alloc.Namespace, class, name, prefix string) (string, error) {
	value := strconv.Quote(prefix + strconv.Itoa(tx.alloc.Next(ns)))
	if err := tx.Define(class, "String", name, value); err != nil {
		return "", err
	}
	return value, nil
}

// Define appends a constant to its class document and records it in the
// symbol table.
func (tx *Tx) Define(class, typ, name, value string) error {
	path := tx.cfg.ConstantsPath(class)
	d, err := tx.Document(path, "defining "+name, class+" class")
	if err != nil {
		return err
	}
	if err := tx.st.SetSymbol(class, name, value); err != nil {
		return err
	}
	line, err := tx.Fill(templates.ConfigConstant, templates.Tokens{
		"CONSTANT-TYPE":  typ,
		"CONSTANT-NAME":  name,
		"CONSTANT-VALUE": value,
	})
	if err != nil {
		return err
	}
	if err := appendSlot(path, d, "constants", line); err != nil {
		return err
	}
	tx.symbols = append(tx.symbols, Symbol{Class: class, Name: name, Value: value})
	return nil
}

// Symbol returns the value of a constant defined by this or an earlier
// transaction.
func (tx *Tx) Symbol(class, name string) (string, bool) {
	return tx.st.Symbol(class, name)
}

// AssignCategory records a lookup category. A zero id is allocated; an
// explicit id is observed so later allocations stay above it.
func (tx *Tx) AssignCategory(name string, id int) int {
	c := Category{Name: name, ID: id, Observed: id > 0}
	if id > 0 {
		tx.alloc.Observe(alloc.Categories, id)
	} else {
		c.ID = tx.alloc.Next(alloc.Categories)
	}
	tx.st.Categories[name] = c.ID
	tx.categories = append(tx.categories, c)
	return c.ID
}

// recordMigration adds schema statements to the migration of this
// transaction.
func (tx *Tx) recordMigration(sql string) {
	tx.migration.WriteString(sql)
}

// finish stores amendable documents and counters in the working state.
func (tx *Tx) finish() {
	for _, path := range tx.order {
		if d, ok := tx.docs[path]; ok {
			tx.st.PutDocument(path, d)
		}
	}
	tx.st.Counters = tx.alloc.Snapshot()
}

// files renders every touched document in touch order.
func (tx *Tx) files() []*File {
	files := make([]*File, 0, len(tx.order))
	for _, path := range tx.order {
		f := &File{Path: path, Created: tx.created[path]}
		if d, ok := tx.docs[path]; ok {
			f.Content = []byte(d.Render())
		} else {
			f.Content = []byte(tx.plain[path])
		}
		files = append(files, f)
	}
	return files
}

// emitterErr wraps an emitter failure unless it already carries one of the
// generator error kinds.
func emitterErr(emitter, subject string, err error) error {
	if err == nil {
		return nil
	}
	var (
		pre *PrerequisiteError
		anc *AnchorError
		gen *GenerationError
	)
	if errors.As(err, &pre) || errors.As(err, &anc) || errors.As(err, &gen) {
		return err
	}
	return NewGenerationError(emitter, subject, "", err)
}

// line terminates s with a newline.
func line(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
