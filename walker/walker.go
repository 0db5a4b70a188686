package walker

import (
	"fmt"
	"sync"

	"go.yaml.in/yaml/v4"
)

// Action controls the walker's behavior after visiting a leaf.
type Action int

const (
	// Continue continues walking normally.
	Continue Action = iota

	// Stop stops the walk immediately. No more leaves will be visited.
	Stop
)

// IsValid returns true if the action is one of the defined constants.
func (a Action) IsValid() bool {
	return a == Continue || a == Stop
}

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case Continue:
		return "Continue"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("Action(%d)", a)
	}
}

// LeafHandler is called for every scalar leaf.
//
// path leads from the root to the mapping or sequence holding the leaf and
// key is the leaf's own segment within it. path is reused between calls;
// use [Path.Clone] to keep it.
type LeafHandler func(path Path, key Segment, leaf *yaml.Node) Action

const (
	defaultPathCap = 8  // Most schemas are <8 levels deep
	maxPathCap     = 64 // Don't pool excessively deep paths
)

var pathPool = sync.Pool{
	New: func() any {
		p := make(Path, 0, defaultPathCap)
		return &p
	},
}

// Walk visits every scalar leaf under root in document order: mapping
// entries in insertion order, sequence elements by index. Mapping values and
// sequence elements that are themselves mappings or sequences are descended
// into. A scalar root has no leaves and produces no calls.
//
// Walk never modifies the tree, but handlers may. Entries appended to a
// mapping or sequence after the walker entered it are not visited.
func Walk(root *yaml.Node, fn LeafHandler) {
	if root == nil || fn == nil {
		return
	}
	pp := pathPool.Get().(*Path)
	path := (*pp)[:0]

	w := &walk{fn: fn, path: path}
	w.node(root)

	if cap(w.path) <= maxPathCap {
		*pp = w.path[:0]
		pathPool.Put(pp)
	}
}

type walk struct {
	fn      LeafHandler
	path    Path
	stopped bool
}

// node descends into composite nodes. It returns without calling the
// handler for a scalar, since a scalar is only a leaf relative to its parent.
func (w *walk) node(n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			w.node(n.Content[0])
		}

	case yaml.MappingNode:
		end := len(n.Content)
		for i := 0; i+1 < end && !w.stopped; i += 2 {
			w.child(Segment{Key: n.Content[i].Value, Index: -1}, n.Content[i+1])
		}

	case yaml.SequenceNode:
		end := len(n.Content)
		for i := 0; i < end && !w.stopped; i++ {
			w.child(Segment{Index: i}, n.Content[i])
		}

	case yaml.AliasNode:
		if n.Alias != nil {
			w.node(n.Alias)
		}
	}
}

func (w *walk) child(key Segment, value *yaml.Node) {
	if value.Kind == yaml.AliasNode && value.Alias != nil {
		value = value.Alias
	}
	if value.Kind == yaml.ScalarNode {
		if w.fn(w.path, key, value) == Stop {
			w.stopped = true
		}
		return
	}
	w.path = append(w.path, key)
	w.node(value)
	w.path = w.path[:len(w.path)-1]
}
