package document

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Lookup resolves a local JSON pointer such as "#/definitions/part/properties"
// against the document. "", "#" and "#/" all address the root.
func (d *Document) Lookup(pointer string) (*yaml.Node, error) {
	if d.root == nil {
		return nil, fmt.Errorf("cannot resolve %q: document is empty", pointer)
	}
	ref := strings.TrimPrefix(pointer, "#")
	if ref == "" || ref == "/" {
		return d.root, nil
	}
	if !strings.HasPrefix(ref, "/") {
		return nil, fmt.Errorf("invalid pointer %q: must start with '/'", pointer)
	}

	parts := strings.Split(strings.TrimPrefix(ref, "/"), "/")
	current := d.root
	for i, part := range parts {
		if decoded, err := url.PathUnescape(part); err == nil {
			part = decoded
		}
		part = UnescapePointerToken(part)

		switch current.Kind {
		case yaml.MappingNode:
			next := MappingValue(current, part)
			if next == nil {
				return nil, fmt.Errorf("pointer not found: #/%s (missing key: %s)", strings.Join(parts[:i+1], "/"), part)
			}
			current = next

		case yaml.SequenceNode:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 {
				return nil, fmt.Errorf("invalid array index '%s' in pointer: #/%s", part, strings.Join(parts[:i+1], "/"))
			}
			if index >= len(current.Content) {
				return nil, fmt.Errorf("array index %d out of bounds (length %d) in pointer: #/%s", index, len(current.Content), strings.Join(parts[:i+1], "/"))
			}
			current = current.Content[index]

		default:
			return nil, fmt.Errorf("cannot traverse into scalar at #/%s", strings.Join(parts[:i], "/"))
		}
	}
	return current, nil
}

// EscapePointerToken escapes a key for use as a JSON pointer token.
// Per RFC 6901, ~ becomes ~0 and / becomes ~1.
func EscapePointerToken(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// UnescapePointerToken reverses EscapePointerToken.
func UnescapePointerToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
