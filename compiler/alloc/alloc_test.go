package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIsMonotonic(t *testing.T) {
	for _, base := range []int{0, 1, 41} {
		a := New(map[Namespace]int{Fields: base})
		seen := make(map[int]bool)
		for n := 1; n <= 25; n++ {
			got := a.Next(Fields)
			assert.Equal(t, base+n, got)
			assert.False(t, seen[got], "index %d reused", got)
			seen[got] = true
		}
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	a := New(map[Namespace]int{Fields: 10, Actions: 3})
	assert.Equal(t, 11, a.Next(Fields))
	assert.Equal(t, 4, a.Next(Actions))
	assert.Equal(t, 1, a.Next(Pages))
	assert.Equal(t, 12, a.Next(Fields))
	assert.Equal(t, 0, a.Current(Categories))
}

func TestObserve(t *testing.T) {
	a := New(nil)
	a.Observe(Categories, 7)
	assert.Equal(t, 8, a.Next(Categories))
	a.Observe(Categories, 2)
	assert.Equal(t, 9, a.Next(Categories), "observing a lower value never lowers the floor")
}

func TestSnapshotAndClone(t *testing.T) {
	a := New(map[Namespace]int{Pages: 2})
	a.Next(Pages)
	snap := a.Snapshot()
	assert.Equal(t, map[Namespace]int{Pages: 3}, snap)

	snap[Pages] = 100
	assert.Equal(t, 3, a.Current(Pages))

	c := a.Clone()
	c.Next(Pages)
	assert.Equal(t, 3, a.Current(Pages))
	assert.Equal(t, 4, c.Current(Pages))
	assert.Equal(t, "alloc{pages=3}", a.String())
}

func TestNegativeSeedPanics(t *testing.T) {
	assert.Panics(t, func() { New(map[Namespace]int{Fields: -1}) })
}
