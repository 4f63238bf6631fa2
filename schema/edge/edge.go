package edge

import "github.com/bws/jdgen/schema"

// ManyToOne returns a builder for a many to one relationship from source to
// target. The source gains a nullable reference to the target.
func ManyToOne(source, target string) *Builder {
	return &Builder{&schema.Relationship{Source: source, Target: target, Association: schema.ManyToOne}}
}

// ManyToMany returns a builder for a many to many relationship. A single
// associative table links both sides.
func ManyToMany(source, target string) *Builder {
	return &Builder{&schema.Relationship{Source: source, Target: target, Association: schema.ManyToMany}}
}

// Builder is the builder for relationships.
type Builder struct {
	desc *schema.Relationship
}

// Display sets the attributes shown for each side: sourceAttr is displayed
// on the target's pages and targetAttr on the source's pages.
func (b *Builder) Display(sourceAttr, targetAttr string) *Builder {
	b.desc.SourceAttribute = sourceAttr
	b.desc.TargetAttribute = targetAttr
	return b
}

// Bidirectional also amends the target's artifacts.
func (b *Builder) Bidirectional() *Builder {
	b.desc.Bidirectional = true
	return b
}

// Required makes the reference to the target required when saving the
// source.
func (b *Builder) Required() *Builder {
	b.desc.TargetRequired = true
	return b
}

// InView adds display columns to the list pages. target adds the target's
// display attribute to the source list; source the reverse.
func (b *Builder) InView(source, target bool) *Builder {
	b.desc.SourceInView = source
	b.desc.TargetInView = target
	return b
}

// Descriptor returns the relationship.
func (b *Builder) Descriptor() *schema.Relationship { return b.desc }
