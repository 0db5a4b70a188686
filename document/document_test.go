package document

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"

	"github.com/figadore/json-schema-generator/schemaerrors"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src), "test.yaml")
	require.NoError(t, err)
	return doc
}

func TestParse_PreservesKeyOrder(t *testing.T) {
	doc := mustParse(t, "zebra: 1\nalpha: 2\nmiddle:\n  z: true\n  a: false\n")

	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"zebra":1,"alpha":2,"middle":{"z":true,"a":false}}`, string(data))
}

func TestParse_JSONInput(t *testing.T) {
	doc := mustParse(t, `{"id": "part", "type": "object", "required": ["color"]}`)

	assert.Equal(t, "part", doc.ID())
	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"id":"part","type":"object","required":["color"]}`, string(data))
}

func TestMarshalJSON_Scalars(t *testing.T) {
	doc := mustParse(t, `s: hello
i: 42
f: 1.5
t: true
n: null
q: "42"
inf: .inf
html: "<a & b>"
`)

	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"s":"hello","i":42,"f":1.5,"t":true,"n":null,"q":"42","inf":null,"html":"<a & b>"}`, string(data))
}

func TestMarshalIndentJSON(t *testing.T) {
	doc := mustParse(t, "a: 1\n")

	data, err := doc.MarshalIndentJSON("", "    ")
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 1\n}", string(data))
}

func TestYAML_PreservesKeyOrder(t *testing.T) {
	doc := mustParse(t, "b: 1\na: 2\n")

	data, err := doc.YAML()
	require.NoError(t, err)
	assert.Equal(t, "b: 1\na: 2\n", string(data))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"unterminated flow sequence", "a: [1, 2\n"},
		{"nested mapping on one line", "a: b: c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "broken.yaml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, schemaerrors.ErrParse), "expected ErrParse, got %v", err)

			var parseErr *schemaerrors.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, "broken.yaml", parseErr.Path)
		})
	}
}

func TestParse_ByteOrderMarks(t *testing.T) {
	t.Run("UTF-8", func(t *testing.T) {
		doc, err := Parse(append([]byte{0xEF, 0xBB, 0xBF}, "id: bom\n"...), "bom.yaml")
		require.NoError(t, err)
		assert.Equal(t, "bom", doc.ID())
	})

	t.Run("UTF-16LE", func(t *testing.T) {
		data := []byte{0xFF, 0xFE}
		for _, c := range []byte("id: wide\n") {
			data = append(data, c, 0x00)
		}
		doc, err := Parse(data, "wide.yaml")
		require.NoError(t, err)
		assert.Equal(t, "wide", doc.ID())
	})
}

func TestParse_ExpandsAliasesAndMerges(t *testing.T) {
	doc := mustParse(t, `base: &b
  type: string
  minLength: 1
copy: *b
derived:
  <<: *b
  minLength: 2
`)

	data, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"base":{"type":"string","minLength":1},"copy":{"type":"string","minLength":1},"derived":{"minLength":2,"type":"string"}}`,
		string(data))

	// The expanded copy must not share nodes with its anchor.
	MappingValue(doc.Root(), "copy").Content[1].Value = "integer"
	assert.Equal(t, "string", MappingValue(MappingValue(doc.Root(), "base"), "type").Value)
}

// nestedAnchors returns a document of the given number of levels, each a
// list of ten aliases to the level below.
func nestedAnchors(levels int) string {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= levels; i++ {
		aliases := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*l%d, ", i-1), 10), ", ")
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, aliases)
	}
	return b.String()
}

func TestParse_AliasExpansionLimit(t *testing.T) {
	t.Run("nested anchors", func(t *testing.T) {
		_, err := Parse([]byte(nestedAnchors(6)), "anchors.yaml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, schemaerrors.ErrResourceLimit))

		var limitErr *schemaerrors.ResourceLimitError
		require.True(t, errors.As(err, &limitErr))
		assert.Equal(t, "alias_expansion", limitErr.ResourceType)
		assert.Equal(t, int64(minAliasExpansion), limitErr.Limit)
		assert.Contains(t, err.Error(), "anchors.yaml")
	})

	t.Run("merge keys", func(t *testing.T) {
		var b strings.Builder
		b.WriteString(nestedAnchors(2))
		b.WriteString("m0: &m0 {a: *l2}\n")
		for i := 1; i <= 12; i++ {
			fmt.Fprintf(&b, "m%d: &m%d {<<: *m%d, k%d: *m%d}\n", i, i, i-1, i, i-1)
		}
		_, err := Parse([]byte(b.String()), "merges.yaml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, schemaerrors.ErrResourceLimit))
	})

	t.Run("within budget", func(t *testing.T) {
		doc, err := Parse([]byte(nestedAnchors(3)), "anchors.yaml")
		require.NoError(t, err)
		assert.Len(t, MappingValue(doc.Root(), "l3").Content, 10)
	})
}

func TestID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"declared", "id: car\ntype: object\n", "car"},
		{"versioned", "id: car-1.0\n", "car-1.0"},
		{"missing", "type: object\n", ""},
		{"non scalar", "id: [a, b]\n", ""},
		{"sequence root", "- id: car\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustParse(t, tt.input).ID())
		})
	}
}

func TestClone_IsIndependent(t *testing.T) {
	doc := mustParse(t, "id: car\nproperties:\n  wheel:\n    $ref: part\n")
	clone := doc.Clone()

	ref, err := clone.Lookup("#/properties/wheel/$ref")
	require.NoError(t, err)
	ref.Value = "#/definitions/part"

	orig, err := doc.Lookup("#/properties/wheel/$ref")
	require.NoError(t, err)
	assert.Equal(t, "part", orig.Value)
	assert.Equal(t, doc.Source(), clone.Source())
}

func TestSetDefinition(t *testing.T) {
	t.Run("creates definitions as last key", func(t *testing.T) {
		doc := mustParse(t, "id: car\ntype: object\n")

		replaced, err := doc.SetDefinition("part", StringNode("x"))
		require.NoError(t, err)
		assert.False(t, replaced)
		assert.Equal(t, []string{"id", "type", "definitions"}, MappingKeys(doc.Root()))
		assert.Equal(t, []string{"part"}, doc.DefinitionIDs())
	})

	t.Run("replaces existing entry in place", func(t *testing.T) {
		doc := mustParse(t, "definitions:\n  part: old\n  local: keep\n")

		replaced, err := doc.SetDefinition("part", StringNode("new"))
		require.NoError(t, err)
		assert.True(t, replaced)
		assert.Equal(t, []string{"part", "local"}, doc.DefinitionIDs())
		assert.Equal(t, "new", MappingValue(doc.Definitions(), "part").Value)
	})

	t.Run("rejects non-mapping root", func(t *testing.T) {
		doc := mustParse(t, "- a\n- b\n")
		_, err := doc.SetDefinition("part", StringNode("x"))
		assert.Error(t, err)
	})

	t.Run("rejects non-mapping definitions", func(t *testing.T) {
		doc := mustParse(t, "definitions: [a]\n")
		_, err := doc.SetDefinition("part", StringNode("x"))
		assert.Error(t, err)
	})
}

func TestLookup(t *testing.T) {
	doc := mustParse(t, `definitions:
  wheel:
    properties:
      color:
        type: string
  a/b~c:
    type: integer
items:
  - first
  - second
`)

	tests := []struct {
		name    string
		pointer string
		want    string
		wantErr bool
	}{
		{name: "nested key", pointer: "#/definitions/wheel/properties/color/type", want: "string"},
		{name: "without hash", pointer: "/items/1", want: "second"},
		{name: "escaped token", pointer: "#/definitions/a~1b~0c/type", want: "integer"},
		{name: "missing key", pointer: "#/definitions/tyre", wantErr: true},
		{name: "index out of range", pointer: "#/items/5", wantErr: true},
		{name: "bad index", pointer: "#/items/x", wantErr: true},
		{name: "through scalar", pointer: "#/items/0/x", wantErr: true},
		{name: "relative", pointer: "definitions", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := doc.Lookup(tt.pointer)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.Value)
		})
	}

	root, err := doc.Lookup("#")
	require.NoError(t, err)
	assert.Equal(t, yaml.MappingNode, root.Kind)
}

func TestEscapePointerToken(t *testing.T) {
	assert.Equal(t, "part", EscapePointerToken("part"))
	assert.Equal(t, "a~1b~0c", EscapePointerToken("a/b~c"))
	assert.Equal(t, "a/b~c", UnescapePointerToken(EscapePointerToken("a/b~c")))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrLoad))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestInterface(t *testing.T) {
	doc := mustParse(t, "id: car\nrequired: [make]\nmax: 3\n")

	v, err := doc.Interface()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":       "car",
		"required": []any{"make"},
		"max":      float64(3),
	}, v)
}
