// Package load reads fragment and relationship definitions from YAML files
// and GraphQL SDL.
//
// A definition file holds one or more YAML documents. Each document is either
// a fragment with optional view options or a relationship:
//
//	fragment:
//	  entity: Invoice
//	  package: com.acme.billing
//	  attributes:
//	    - {name: Number, kind: TEXT, maxLength: 20, required: true}
//	    - {name: Amount, kind: NUMERIC, precision: 10, scale: 2}
//	view:
//	  filters: [Number]
//	  columns: [Number, Amount]
//	---
//	relationship:
//	  source: Invoice
//	  target: Customer
//	  targetAttribute: Name
//	  association: MANY_TO_ONE
//
// When view options are omitted they are derived from the attribute filter
// and column flags.
package load

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/schema"
)

// ErrCycle is returned by Order when fragments are their own ancestors.
var ErrCycle = errors.New("load: parent cycle")

// Definition is one fragment or relationship read from a file.
type Definition struct {
	// File is the path the definition was read from, if any.
	File         string
	Fragment     *schema.Fragment
	View         *schema.ViewOptions
	Relationship *schema.Relationship
}

// Name returns a short description used in logs and reports.
func (d *Definition) Name() string {
	switch {
	case d.Fragment != nil:
		return d.Fragment.EntityName
	case d.Relationship != nil:
		return d.Relationship.Source + " -> " + d.Relationship.Target
	}
	return "<empty>"
}

// ViewOptions returns the explicit view options or the fragment default.
func (d *Definition) ViewOptions() *schema.ViewOptions {
	if d.View != nil || d.Fragment == nil {
		return d.View
	}
	return d.Fragment.DefaultView()
}

// document is the on-disk form of a definition.
type document struct {
	Fragment     *schema.Fragment     `yaml:"fragment,omitempty"`
	View         *schema.ViewOptions  `yaml:"view,omitempty"`
	Relationship *schema.Relationship `yaml:"relationship,omitempty"`
}

// Definitions is an ordered list of definitions.
type Definitions []*Definition

// Fragments returns the fragment definitions.
func (ds Definitions) Fragments() Definitions {
	return slices.DeleteFunc(slices.Clone(ds), func(d *Definition) bool { return d.Fragment == nil })
}

// Relationships returns the relationship definitions.
func (ds Definitions) Relationships() Definitions {
	return slices.DeleteFunc(slices.Clone(ds), func(d *Definition) bool { return d.Relationship == nil })
}

// Order returns the definitions in generation order: fragments first, each
// after its parent when the parent is part of the set, then relationships.
// The relative order of independent definitions is preserved. A parent that
// is not in the set is left for the generator to resolve against the
// project state.
func (ds Definitions) Order() (Definitions, error) {
	frags := ds.Fragments()
	byName := make(map[string]*Definition, len(frags))
	for _, d := range frags {
		byName[naming.EntityConstant(d.Fragment.EntityName)] = d
	}
	const (
		unvisited = iota
		visiting
		done
	)
	var (
		out   = make(Definitions, 0, len(ds))
		state = make(map[*Definition]int, len(frags))
		visit func(d *Definition, path []string) error
	)
	visit = func(d *Definition, path []string) error {
		name := naming.EntityConstant(d.Fragment.EntityName)
		switch state[d] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(append(path, name), " -> "))
		}
		state[d] = visiting
		if d.Fragment.HasParent() {
			if p, ok := byName[naming.EntityConstant(d.Fragment.ParentEntityName)]; ok {
				if err := visit(p, append(path, name)); err != nil {
					return err
				}
			}
		}
		state[d] = done
		out = append(out, d)
		return nil
	}
	for _, d := range frags {
		if err := visit(d, nil); err != nil {
			return nil, err
		}
	}
	return append(out, ds.Relationships()...), nil
}

// Parse reads every YAML document from r. name is recorded as the File of
// each definition.
func Parse(name string, r io.Reader) (Definitions, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var ds Definitions
	for i := 0; ; i++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load: %s: document %d: %w", name, i+1, err)
		}
		switch {
		case doc.Fragment != nil && doc.Relationship != nil:
			return nil, fmt.Errorf("load: %s: document %d: fragment and relationship in one document", name, i+1)
		case doc.Relationship != nil && doc.View != nil:
			return nil, fmt.Errorf("load: %s: document %d: view options without a fragment", name, i+1)
		case doc.Fragment == nil && doc.Relationship == nil:
			return nil, fmt.Errorf("load: %s: document %d: neither fragment nor relationship", name, i+1)
		}
		ds = append(ds, &Definition{File: name, Fragment: doc.Fragment, View: doc.View, Relationship: doc.Relationship})
	}
	return ds, nil
}

// LoadFile reads the definitions in the file at path.
func LoadFile(path string) (Definitions, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return Parse(path, bytes.NewReader(b))
}

// LoadDir reads every *.yaml and *.yml file in dir concurrently. The result
// is ordered by file name, then by position within the file.
func LoadDir(ctx context.Context, dir string, workers int) (Definitions, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	results := make([]Definitions, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, err := LoadFile(f)
			if err != nil {
				return err
			}
			results[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all Definitions
	for _, ds := range results {
		all = append(all, ds...)
	}
	return all, nil
}

// Load reads a single file or, when path is a directory, every definition
// file in it.
func Load(ctx context.Context, path string, workers int) (Definitions, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if fi.IsDir() {
		return LoadDir(ctx, path, workers)
	}
	return LoadFile(path)
}

// Marshal encodes definitions as a multi-document YAML stream readable by
// Parse.
func Marshal(ds Definitions) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, d := range ds {
		if err := enc.Encode(&document{Fragment: d.Fragment, View: d.View, Relationship: d.Relationship}); err != nil {
			return nil, fmt.Errorf("load: encode %s: %w", d.Name(), err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
