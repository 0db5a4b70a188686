// Package document holds the structured schema documents schemagen compiles.
//
// A Document wraps a yaml.Node tree rather than map[string]any so that the
// key order of the source file is kept for traversal and for output. JSON is
// a subset of YAML, so the same decoder handles .yaml, .yml and .json files.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/figadore/json-schema-generator/schemaerrors"
)

// IDKey is the top-level key holding a document's identifier.
const IDKey = "id"

// DefinitionsKey is the top-level key of the table external documents are
// inlined into.
const DefinitionsKey = "definitions"

// maxAliasDepth bounds alias expansion so a self-referencing anchor cannot
// recurse forever.
const maxAliasDepth = 64

// Alias expansion may add at most aliasExpansionRatio times the number of
// nodes in the parsed input, and never less than minAliasExpansion nodes.
// Nested anchors otherwise grow exponentially past any file size limit.
const (
	aliasExpansionRatio = 10
	minAliasExpansion   = 100_000
)

// Document is a parsed schema document.
type Document struct {
	root   *yaml.Node
	source string
}

// New wraps an existing node tree. A DocumentNode is unwrapped to its content.
func New(root *yaml.Node, source string) *Document {
	if root != nil && root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return &Document{root: root, source: source}
}

// Parse decodes YAML or JSON content. source names the content in errors.
func Parse(data []byte, source string) (*Document, error) {
	data, err := stripBOM(data)
	if err != nil {
		return nil, &schemaerrors.ParseError{Path: source, Message: "invalid text encoding", Cause: err}
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &schemaerrors.ParseError{Path: source, Cause: err}
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil, &schemaerrors.ParseError{Path: source, Message: "document is empty"}
	}

	limit := max(minAliasExpansion, aliasExpansionRatio*countNodes(node.Content[0], -1))
	exp := &expander{limit: limit, budget: limit}
	root, err := exp.expand(node.Content[0], 0)
	if err != nil {
		var limitErr *schemaerrors.ResourceLimitError
		if errors.As(err, &limitErr) {
			if source != "" {
				limitErr.Message += " in " + source
			}
			return nil, limitErr
		}
		return nil, &schemaerrors.ParseError{Path: source, Line: node.Content[0].Line, Message: err.Error()}
	}
	return &Document{root: root, source: source}, nil
}

// ReadFile reads and parses the document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the caller
	if err != nil {
		return nil, &schemaerrors.LoadError{Path: path, Cause: err}
	}
	return Parse(data, path)
}

// Root returns the top-level node.
func (d *Document) Root() *yaml.Node {
	return d.root
}

// Source returns the file path or name the document was parsed from.
func (d *Document) Source() string {
	return d.source
}

// ID returns the document's declared identifier, or "" when the root is not
// a mapping or has no scalar id.
func (d *Document) ID() string {
	v := MappingValue(d.root, IDKey)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}

// Clone returns a deep copy that shares no nodes with d.
func (d *Document) Clone() *Document {
	return &Document{root: CloneNode(d.root), source: d.source}
}

// Definitions returns the top-level definitions mapping, or nil.
func (d *Document) Definitions() *yaml.Node {
	v := MappingValue(d.root, DefinitionsKey)
	if v == nil || v.Kind != yaml.MappingNode {
		return nil
	}
	return v
}

// DefinitionIDs lists the keys of the definitions mapping in document order.
func (d *Document) DefinitionIDs() []string {
	return MappingKeys(d.Definitions())
}

// SetDefinition stores value under definitions[id], creating the definitions
// mapping as the last top-level entry when it is missing. An existing entry
// is replaced in place. It reports whether an entry was replaced.
func (d *Document) SetDefinition(id string, value *yaml.Node) (bool, error) {
	if d.root == nil || d.root.Kind != yaml.MappingNode {
		return false, fmt.Errorf("cannot add definition %q: document root is not a mapping", id)
	}
	defs := MappingValue(d.root, DefinitionsKey)
	switch {
	case defs == nil:
		defs = NewMapping()
		SetMappingValue(d.root, DefinitionsKey, defs)
	case defs.Kind != yaml.MappingNode:
		return false, fmt.Errorf("cannot add definition %q: %s is not a mapping", id, DefinitionsKey)
	}
	return SetMappingValue(defs, id, value), nil
}

// MarshalYAML implements yaml.Marshaler so a Document encodes as its tree.
func (d *Document) MarshalYAML() (any, error) {
	return d.root, nil
}

// YAML encodes the document as YAML, preserving key order.
func (d *Document) YAML() ([]byte, error) {
	return yaml.Marshal(d.root)
}

// Interface converts the document to plain Go values
// (map[string]any, []any, string, float64, bool, nil).
func (d *Document) Interface() (any, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// stripBOM removes a UTF-8 byte order mark and transcodes UTF-16 input that
// announces itself with a BOM. Input without a BOM is returned untouched.
func stripBOM(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) &&
		!bytes.HasPrefix(data, []byte{0xFF, 0xFE}) &&
		!bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return data, nil
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	return out, err
}

var errAliasDepth = errors.New("alias nesting too deep (self-referencing anchor?)")

// expander replaces alias nodes with copies of their anchors and applies
// "<<" merge keys, so the result is a plain tree. Every copied node is
// charged against budget.
type expander struct {
	limit  int
	budget int
}

func (e *expander) expand(n *yaml.Node, depth int) (*yaml.Node, error) {
	if n == nil {
		return nil, nil
	}
	if depth > maxAliasDepth {
		return nil, errAliasDepth
	}
	if n.Kind == yaml.AliasNode {
		if err := e.charge(n.Alias); err != nil {
			return nil, err
		}
		return e.expand(CloneNode(n.Alias), depth+1)
	}
	for i, child := range n.Content {
		expanded, err := e.expand(child, depth+1)
		if err != nil {
			return nil, err
		}
		n.Content[i] = expanded
	}
	if n.Kind == yaml.MappingNode {
		if err := e.applyMerges(n); err != nil {
			return nil, err
		}
	}
	n.Anchor = ""
	return n, nil
}

// charge spends the size of a subtree about to be copied.
func (e *expander) charge(n *yaml.Node) error {
	e.budget -= countNodes(n, e.budget+1)
	if e.budget < 0 {
		return &schemaerrors.ResourceLimitError{
			ResourceType: "alias_expansion",
			Limit:        int64(e.limit),
			Message:      "aliases expand to too many nodes",
		}
	}
	return nil
}

// countNodes returns the number of nodes in the tree under n without
// following aliases. It stops once the count reaches limit; a negative
// limit counts everything.
func countNodes(n *yaml.Node, limit int) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, child := range n.Content {
		if limit >= 0 && count >= limit {
			break
		}
		rest := -1
		if limit >= 0 {
			rest = limit - count
		}
		count += countNodes(child, rest)
	}
	return count
}

// applyMerges folds "<<" entries into m. Explicit keys win over merged ones
// and earlier merge sources win over later ones.
func (e *expander) applyMerges(m *yaml.Node) error {
	var sources []*yaml.Node
	content := make([]*yaml.Node, 0, len(m.Content))
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.Value == "<<" && (k.Tag == "!!merge" || k.Tag == "" || k.ShortTag() == "!!merge") {
			switch v.Kind {
			case yaml.MappingNode:
				sources = append(sources, v)
				continue
			case yaml.SequenceNode:
				sources = append(sources, v.Content...)
				continue
			}
		}
		content = append(content, k, v)
	}
	if len(sources) == 0 {
		return nil
	}
	m.Content = content
	for _, src := range sources {
		if src.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(src.Content); i += 2 {
			key := src.Content[i].Value
			if MappingValue(m, key) == nil {
				if err := e.charge(src.Content[i+1]); err != nil {
					return err
				}
				m.Content = append(m.Content, CloneNode(src.Content[i]), CloneNode(src.Content[i+1]))
			}
		}
	}
	return nil
}
