// Package doc implements the slot based document model used to build and
// amend generated files.
//
// A Document is an ordered list of fixed text segments and named slots. It is
// parsed from template text in which a slot is written as @@name@@. Appending
// to a slot inserts text immediately before the slot marker, so a slot marks
// the end of a region that grows as emitters append to it. Markers contained
// in appended text become new slots, which lets an emitter open a region
// (for example the fields of one action) that later emitters extend.
//
// Documents are persisted with their markers (see Marked) and rendered
// without them (see Render). Amending a document never searches the rendered
// text: an emitter names the slot it appends to, and a missing slot is an
// error.
package doc

import (
	"regexp"
	"slices"
	"strings"

	"github.com/bws/jdgen"
)

// markerRe matches a slot marker. Slot names may contain letters, digits and
// the characters _ . : -
var markerRe = regexp.MustCompile(`@@([A-Za-z0-9_.:\-]+)@@`)

// Marker returns the marker text of the named slot.
func Marker(name string) string { return "@@" + name + "@@" }

type segment struct {
	text string
	slot string // non-empty for slot markers
}

// Document is an ordered sequence of text and named slots.
type Document struct {
	segs []segment
}

// Parse builds a document from text containing slot markers. Slot names must
// be unique.
func Parse(text string) (*Document, error) {
	d := &Document{}
	segs, err := d.split(text)
	if err != nil {
		return nil, err
	}
	d.segs = segs
	return d, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) *Document {
	d, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return d
}

// split converts text into segments, rejecting slot names already present in
// d or repeated within text.
func (d *Document) split(text string) ([]segment, error) {
	var (
		segs []segment
		seen = make(map[string]bool)
		last int
	)
	for _, m := range markerRe.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		if seen[name] || d.Has(name) {
			return nil, jdgen.NewDuplicateError("slot", name)
		}
		seen[name] = true
		if m[0] > last {
			segs = append(segs, segment{text: text[last:m[0]]})
		}
		segs = append(segs, segment{slot: name})
		last = m[1]
	}
	if last < len(text) {
		segs = append(segs, segment{text: text[last:]})
	}
	return segs, nil
}

func (d *Document) index(slot string) int {
	return slices.IndexFunc(d.segs, func(s segment) bool { return s.slot == slot })
}

// Has reports whether the document contains the named slot.
func (d *Document) Has(slot string) bool { return d.index(slot) >= 0 }

// Slots returns the slot names in document order.
func (d *Document) Slots() []string {
	var names []string
	for _, s := range d.segs {
		if s.slot != "" {
			names = append(names, s.slot)
		}
	}
	return names
}

// Append inserts text immediately before the named slot. Slot markers in
// text become new slots.
func (d *Document) Append(slot, text string) error {
	i := d.index(slot)
	if i < 0 {
		return jdgen.NewNotFoundErrorWithKey("slot", slot)
	}
	if text == "" {
		return nil
	}
	segs, err := d.split(text)
	if err != nil {
		return err
	}
	d.segs = slices.Insert(d.segs, i, segs...)
	return nil
}

// AppendOnce appends text to the slot unless the slot's region already
// contains it. It reports whether text was appended.
func (d *Document) AppendOnce(slot, text string) (bool, error) {
	region, err := d.Region(slot)
	if err != nil {
		return false, err
	}
	if strings.Contains(region, text) {
		return false, nil
	}
	return true, d.Append(slot, text)
}

// Region returns the rendered text between the previous slot marker, or the
// start of the document, and the named slot.
func (d *Document) Region(slot string) (string, error) {
	i := d.index(slot)
	if i < 0 {
		return "", jdgen.NewNotFoundErrorWithKey("slot", slot)
	}
	var b strings.Builder
	j := i
	for j > 0 && d.segs[j-1].slot == "" {
		j--
	}
	for _, s := range d.segs[j:i] {
		b.WriteString(s.text)
	}
	return b.String(), nil
}

// Render returns the document text with all slot markers removed.
func (d *Document) Render() string {
	var b strings.Builder
	for _, s := range d.segs {
		b.WriteString(s.text)
	}
	return b.String()
}

// Marked returns the document text with slot markers in place. Parse(Marked())
// yields an equivalent document.
func (d *Document) Marked() string {
	var b strings.Builder
	for _, s := range d.segs {
		if s.slot != "" {
			b.WriteString(Marker(s.slot))
		} else {
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// Contains reports whether the rendered document contains substr.
func (d *Document) Contains(substr string) bool {
	return strings.Contains(d.Render(), substr)
}

// Clone returns an independent copy of the document.
func (d *Document) Clone() *Document {
	return &Document{segs: slices.Clone(d.segs)}
}
