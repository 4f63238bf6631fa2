package edge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bws/jdgen/schema"
	"github.com/bws/jdgen/schema/edge"
)

func TestManyToOne(t *testing.T) {
	r := edge.ManyToOne("Invoice", "Customer").
		Display("", "Name").
		Required().
		InView(false, true).
		Descriptor()
	assert.Equal(t, "Invoice", r.Source)
	assert.Equal(t, "Customer", r.Target)
	assert.Equal(t, schema.ManyToOne, r.Association)
	assert.Equal(t, "Name", r.TargetAttribute)
	assert.True(t, r.TargetRequired)
	assert.True(t, r.TargetInView)
	assert.False(t, r.SourceInView)
	assert.False(t, r.Bidirectional)
	assert.NoError(t, r.Validate())
}

func TestManyToMany(t *testing.T) {
	r := edge.ManyToMany("Invoice", "Tag").
		Display("Number", "Name").
		Bidirectional().
		Descriptor()
	assert.True(t, r.IsManyToMany())
	assert.True(t, r.Bidirectional)
	assert.Equal(t, "Number", r.SourceAttribute)
	assert.NoError(t, r.Validate())

	r = edge.ManyToMany("Invoice", "Tag").Bidirectional().Descriptor()
	assert.Error(t, r.Validate())
}
