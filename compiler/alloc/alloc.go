// Package alloc hands out the numeric indices behind generated constants.
//
// Each namespace (field ids, action ids, page ids, lookup categories) owns a
// counter seeded once from the persisted project maximum. Indices only grow:
// the n-th call to Next after seeding with base returns base+n, and an index
// is never handed out twice, even if the constant that used it is dropped.
package alloc

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Namespace identifies an independent counter.
type Namespace string

// Namespaces used by the generator.
const (
	Fields     Namespace = "fields"
	Actions    Namespace = "actions"
	Pages      Namespace = "pages"
	Categories Namespace = "categories"
)

// Namespaces lists the generator namespaces in a stable order.
var Namespaces = []Namespace{Fields, Actions, Pages, Categories}

// Allocator owns one counter per namespace. It is not safe for concurrent
// use; a generation transaction owns its allocator.
type Allocator struct {
	max map[Namespace]int
}

// New returns an allocator seeded with the given maxima. Missing namespaces
// start at zero, so their first index is 1.
func New(seed map[Namespace]int) *Allocator {
	a := &Allocator{max: make(map[Namespace]int, len(seed))}
	for ns, v := range seed {
		if v < 0 {
			panic(fmt.Sprintf("alloc: negative seed %d for namespace %s", v, ns))
		}
		a.max[ns] = v
	}
	return a
}

// Next returns the next index of ns.
func (a *Allocator) Next(ns Namespace) int {
	a.max[ns]++
	return a.max[ns]
}

// Observe records an index assigned outside the allocator, for example an
// explicit lookup category id. Later calls to Next return larger values.
func (a *Allocator) Observe(ns Namespace, v int) {
	if v > a.max[ns] {
		a.max[ns] = v
	}
}

// Current returns the largest index of ns handed out or observed so far.
func (a *Allocator) Current(ns Namespace) int {
	return a.max[ns]
}

// Snapshot returns the current maxima, suitable for persisting and seeding a
// later allocator.
func (a *Allocator) Snapshot() map[Namespace]int {
	return maps.Clone(a.max)
}

// Clone returns an independent copy of the allocator.
func (a *Allocator) Clone() *Allocator {
	return &Allocator{max: maps.Clone(a.max)}
}

// String formats the counters sorted by namespace.
func (a *Allocator) String() string {
	var b strings.Builder
	b.WriteString("alloc{")
	for i, k := range slices.Sorted(maps.Keys(a.max)) {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%d", k, a.max[k])
	}
	b.WriteByte('}')
	return b.String()
}
