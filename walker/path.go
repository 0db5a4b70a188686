package walker

import (
	"slices"
	"strconv"
	"strings"

	"github.com/figadore/json-schema-generator/document"
)

// Segment is one step of a Path: a mapping key or a sequence index.
type Segment struct {
	// Key is the mapping key. Empty for sequence elements.
	Key string
	// Index is the sequence index, or -1 for mapping keys.
	Index int
}

// KeySegment returns the segment for mapping key k.
func KeySegment(k string) Segment {
	return Segment{Key: k, Index: -1}
}

// IndexSegment returns the segment for sequence index i.
func IndexSegment(i int) Segment {
	return Segment{Index: i}
}

// IsIndex reports whether the segment addresses a sequence element.
func (s Segment) IsIndex() bool {
	return s.Index >= 0
}

// String returns the key, or the decimal index for sequence elements.
func (s Segment) String() string {
	if s.IsIndex() {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// Path is the sequence of segments from a document root to a node.
type Path []Segment

// Clone returns a copy of p that is safe to keep after a handler returns.
func (p Path) Clone() Path {
	return slices.Clone(p)
}

// Child returns a new path with s appended. p is not modified.
func (p Path) Child(s Segment) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, s)
}

// String renders p as a JSON pointer, e.g. "/properties/wheel/0".
// The root path renders as "".
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(document.EscapePointerToken(s.String()))
	}
	return b.String()
}

// Pointer renders p as an in-document reference, e.g. "#/properties/wheel".
func (p Path) Pointer() string {
	return "#" + p.String()
}
