// Package templates holds the catalog of text templates rendered by the
// generator.
//
// A Catalog is built once, either from the embedded template tree by [Load]
// or from a map by [NewCatalog], and is never modified afterwards. Emitters
// receive the catalog explicitly; there is no package level cache.
//
// # Keys
//
// Templates live under <group>/<name>.tmpl and are addressed by the key
// "group/name", for example "sql/create-table" or "jsp/column-header".
//
// # Tokens and slots
//
// Tokens are upper case words such as FIELD-NAME that [Catalog.Fill]
// replaces literally. Slot markers of the form @@name@@ are left untouched by
// Fill and become insertion points of the compiler/doc document model.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/bws/jdgen"
)

//go:embed configuration datasource jsp lookup process project security sql
var files embed.FS

const ext = ".tmpl"

// Tokens maps token names to replacement text.
type Tokens map[string]string

// Catalog is an immutable set of named templates.
type Catalog struct {
	templates map[string]string
}

// Load builds a catalog from the embedded template tree.
func Load() (*Catalog, error) {
	return LoadFS(files)
}

// LoadFS builds a catalog from every *.tmpl file in fsys. It fails when one of
// the Required keys is missing.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	m := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ext {
			return nil
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("templates: read %s: %w", p, err)
		}
		m[strings.TrimSuffix(p, ext)] = string(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c := &Catalog{templates: m}
	if missing := c.Missing(Required...); len(missing) > 0 {
		return nil, fmt.Errorf("templates: %w", jdgen.NewNotFoundErrorWithKey("template", strings.Join(missing, ", ")))
	}
	return c, nil
}

// MustLoad is like Load but panics on error.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog returns a catalog holding a copy of m. Unlike LoadFS it does not
// require the full key set, which makes it suitable for tests.
func NewCatalog(m map[string]string) *Catalog {
	return &Catalog{templates: maps.Clone(m)}
}

// Override returns a new catalog where the templates in m replace or extend
// the receiver's. The receiver is unchanged.
func (c *Catalog) Override(m map[string]string) *Catalog {
	n := maps.Clone(c.templates)
	if n == nil {
		n = make(map[string]string, len(m))
	}
	maps.Copy(n, m)
	return &Catalog{templates: n}
}

// Get returns the template registered under key.
func (c *Catalog) Get(key string) (string, error) {
	t, ok := c.templates[key]
	if !ok {
		return "", jdgen.NewNotFoundErrorWithKey("template", key)
	}
	return t, nil
}

// MustGet is like Get but panics if the key is not registered.
func (c *Catalog) MustGet(key string) string {
	t, err := c.Get(key)
	if err != nil {
		panic(err)
	}
	return t
}

// Has reports whether key is registered.
func (c *Catalog) Has(key string) bool {
	_, ok := c.templates[key]
	return ok
}

// Keys returns the registered keys in sorted order.
func (c *Catalog) Keys() []string {
	return slices.Sorted(maps.Keys(c.templates))
}

// Len returns the number of registered templates.
func (c *Catalog) Len() int { return len(c.templates) }

// Missing returns the keys from want that are not registered.
func (c *Catalog) Missing(want ...string) []string {
	var missing []string
	for _, k := range want {
		if !c.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// Fill returns the template registered under key with tokens replaced.
func (c *Catalog) Fill(key string, tokens Tokens) (string, error) {
	t, err := c.Get(key)
	if err != nil {
		return "", err
	}
	return Replace(t, tokens), nil
}

// Replace substitutes every occurrence of each token in text. When two tokens
// match at the same position the longer one wins, and substituted text is
// never scanned again.
func Replace(text string, tokens Tokens) string {
	if len(tokens) == 0 {
		return text
	}
	names := make([]string, 0, len(tokens))
	for k := range tokens {
		if k != "" {
			names = append(names, k)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, k, tokens[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
