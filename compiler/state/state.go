// Package state persists what the generator knows about a project between
// runs.
//
// The state replaces scanning generated sources: it records the definitions
// that were generated, the allocator maxima, the symbol table of generated
// constants, the slot documents of every file that later runs amend, the
// lookup categories and a history of committed transactions. It is encoded
// with msgpack and written by the generator's atomic commit together with the
// files it describes.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"math/rand"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bws/jdgen"
	"github.com/bws/jdgen/compiler/alloc"
	"github.com/bws/jdgen/compiler/doc"
	"github.com/bws/jdgen/naming"
	"github.com/bws/jdgen/schema"
)

// FormatVersion is the current encoding version.
const FormatVersion = 1

// DefaultPath is the state file location relative to the project root.
const DefaultPath = ".jdgen/state.msgpack"

// Symbol classes.
const (
	FieldIds       = "FieldIds"
	ActionIds      = "ActionIds"
	PageIds        = "PageIds"
	AttributeNames = "AttributeNames"
	CategoryIds    = "CategoryIds"
)

// SymbolClasses lists the constant classes in a stable order.
var SymbolClasses = []string{FieldIds, ActionIds, PageIds, AttributeNames, CategoryIds}

// Fragment is a generated fragment definition and the view options it was
// generated with.
type Fragment struct {
	Definition *schema.Fragment    `msgpack:"definition"`
	View       *schema.ViewOptions `msgpack:"view"`
}

// Entry records one committed transaction.
type Entry struct {
	ID      string    `msgpack:"id" json:"id"`
	RunID   string    `msgpack:"runId" json:"runId"`
	Kind    string    `msgpack:"kind" json:"kind"`
	Subject string    `msgpack:"subject" json:"subject"`
	Time    time.Time `msgpack:"time" json:"time"`
	Files   []string  `msgpack:"files" json:"files"`
}

// State is the persisted project state.
type State struct {
	Version              int    `msgpack:"version"`
	ConfigurationPackage string `msgpack:"configurationPackage"`
	// Counters holds the allocator maxima per namespace.
	Counters map[alloc.Namespace]int `msgpack:"counters"`
	// Fragments are keyed by entity constant name.
	Fragments     map[string]*Fragment   `msgpack:"fragments"`
	Relationships []*schema.Relationship `msgpack:"relationships"`
	// Documents holds the marked text of every amendable document by path.
	Documents map[string]string `msgpack:"documents"`
	// Symbols maps a constant class to its constants and their values.
	Symbols map[string]map[string]string `msgpack:"symbols"`
	// Categories maps lookup category names to ids.
	Categories map[string]int `msgpack:"categories"`
	History    []*Entry       `msgpack:"history"`
}

// New returns an empty state for a project whose constant classes live in
// configPkg.
func New(configPkg string) *State {
	s := &State{Version: FormatVersion, ConfigurationPackage: configPkg}
	s.init()
	return s
}

func (s *State) init() {
	if s.Counters == nil {
		s.Counters = make(map[alloc.Namespace]int)
	}
	if s.Fragments == nil {
		s.Fragments = make(map[string]*Fragment)
	}
	if s.Documents == nil {
		s.Documents = make(map[string]string)
	}
	if s.Symbols == nil {
		s.Symbols = make(map[string]map[string]string)
	}
	if s.Categories == nil {
		s.Categories = make(map[string]int)
	}
}

// Load reads the state file at path. A missing file yields an error matching
// jdgen.ErrNotInitialized.
func Load(path string) (*State, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", jdgen.ErrNotInitialized, path)
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", path, err)
	}
	return Decode(b)
}

// Decode parses an encoded state.
func Decode(b []byte) (*State, error) {
	s := &State{}
	if err := msgpack.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("state: decode: %w", err)
	}
	if s.Version != FormatVersion {
		return nil, fmt.Errorf("state: unsupported format version %d", s.Version)
	}
	s.init()
	return s, nil
}

// Encode serializes the state.
func (s *State) Encode() ([]byte, error) {
	b, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("state: encode: %w", err)
	}
	return b, nil
}

// Clone returns a deep copy of the state.
func (s *State) Clone() (*State, error) {
	b, err := s.Encode()
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Fragment returns the generated fragment with the given entity reference,
// which may be a common, camel case or qualified name.
func (s *State) Fragment(name string) (*Fragment, bool) {
	f, ok := s.Fragments[naming.EntityConstant(name)]
	return f, ok
}

// FragmentNames returns the entity constant names of all generated fragments,
// sorted.
func (s *State) FragmentNames() []string {
	return slices.Sorted(maps.Keys(s.Fragments))
}

// PutFragment records a generated fragment.
func (s *State) PutFragment(f *schema.Fragment, v *schema.ViewOptions) {
	s.Fragments[naming.EntityConstant(f.EntityName)] = &Fragment{Definition: f, View: v}
}

// HasRelationship reports whether a and b are already related, in either
// direction.
func (s *State) HasRelationship(a, b string) bool {
	ab, ba := naming.ReferenceName(a, b), naming.ReferenceName(b, a)
	for _, r := range s.Relationships {
		if n := naming.ReferenceName(r.Source, r.Target); n == ab || n == ba {
			return true
		}
	}
	return false
}

// Symbol returns the value of a generated constant.
func (s *State) Symbol(class, name string) (string, bool) {
	v, ok := s.Symbols[class][name]
	return v, ok
}

// SetSymbol records a generated constant. Redefining a constant is an error.
func (s *State) SetSymbol(class, name, value string) error {
	m := s.Symbols[class]
	if m == nil {
		m = make(map[string]string)
		s.Symbols[class] = m
	}
	if _, ok := m[name]; ok {
		return jdgen.NewDuplicateError(class, name)
	}
	m[name] = value
	return nil
}

// Document parses the stored document at path.
func (s *State) Document(path string) (*doc.Document, error) {
	text, ok := s.Documents[path]
	if !ok {
		return nil, jdgen.NewNotFoundErrorWithKey("document", path)
	}
	return doc.Parse(text)
}

// PutDocument stores the document at path.
func (s *State) PutDocument(path string, d *doc.Document) {
	s.Documents[path] = d.Marked()
}

// Record appends a history entry and assigns its id.
func (s *State) Record(e *Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	e.ID = NewEntryID(e.Time)
	s.History = append(s.History, e)
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewEntryID returns a ULID for t. IDs created in the same millisecond are
// monotonically increasing.
func NewEntryID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
