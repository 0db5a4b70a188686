package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"go.yaml.in/yaml/v4"
)

// MarshalJSON encodes the document as compact JSON with mapping keys in
// document order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNodeJSON(&buf, d.root); err != nil {
		if d.source != "" {
			return nil, fmt.Errorf("encoding %s: %w", d.source, err)
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndentJSON is like MarshalJSON but applies json.Indent.
func (d *Document) MarshalIndentJSON(prefix, indent string) ([]byte, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeNodeJSON writes n as JSON. Mapping keys keep their source order;
// scalars are typed by their resolved YAML tag.
func writeNodeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNodeJSON(buf, n.Content[0])

	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: mapping key must be a scalar to encode as JSON", k.Line)
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, k.Value); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeNodeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.AliasNode:
		return writeNodeJSON(buf, n.Alias)

	default:
		return writeScalarJSON(buf, n)
	}
}

func writeScalarJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return writeJSON(buf, n.Value)
		}
		return writeJSON(buf, b)
	case "!!int":
		var v any
		if err := n.Decode(&v); err != nil {
			return writeJSON(buf, n.Value)
		}
		return writeJSON(buf, v)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return writeJSON(buf, n.Value)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			// JSON has no representation for these.
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, f)
	default:
		return writeJSON(buf, n.Value)
	}
}

// writeJSON marshals a value to JSON and writes it to the buffer without
// HTML escaping, so descriptions containing <, > or & stay readable.
func writeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
