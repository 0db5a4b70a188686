package walker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

type visit struct {
	Path  string
	Key   string
	Value string
}

func parseNode(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &n))
	return &n
}

func collect(root *yaml.Node) []visit {
	var visits []visit
	Walk(root, func(path Path, key Segment, leaf *yaml.Node) Action {
		visits = append(visits, visit{Path: path.String(), Key: key.String(), Value: leaf.Value})
		return Continue
	})
	return visits
}

func TestWalk_NilInput(t *testing.T) {
	called := false
	Walk(nil, func(Path, Segment, *yaml.Node) Action {
		called = true
		return Continue
	})
	assert.False(t, called)

	// A nil handler is a no-op.
	Walk(parseNode(t, "a: 1\n"), nil)
}

func TestWalk_ScalarRoot(t *testing.T) {
	assert.Empty(t, collect(parseNode(t, "just a string\n")))
}

func TestWalk_DocumentOrder(t *testing.T) {
	root := parseNode(t, `id: car
properties:
  wheel:
    $ref: part
  make:
    type: string
required:
  - make
  - wheel
`)

	assert.Equal(t, []visit{
		{Path: "", Key: "id", Value: "car"},
		{Path: "/properties/wheel", Key: "$ref", Value: "part"},
		{Path: "/properties/make", Key: "type", Value: "string"},
		{Path: "/required", Key: "0", Value: "make"},
		{Path: "/required", Key: "1", Value: "wheel"},
	}, collect(root))
}

func TestWalk_SequenceRoot(t *testing.T) {
	root := parseNode(t, "- $ref: car\n- - nested\n")

	assert.Equal(t, []visit{
		{Path: "/0", Key: "$ref", Value: "car"},
		{Path: "/1", Key: "0", Value: "nested"},
	}, collect(root))
}

func TestWalk_EscapesPathTokens(t *testing.T) {
	root := parseNode(t, "paths:\n  /pets~1:\n    $ref: pet\n")

	visits := collect(root)
	require.Len(t, visits, 1)
	assert.Equal(t, "/paths/~1pets~01", visits[0].Path)
}

func TestWalk_Stop(t *testing.T) {
	root := parseNode(t, "a: 1\nb: 2\nc:\n  d: 3\n")

	var keys []string
	Walk(root, func(path Path, key Segment, leaf *yaml.Node) Action {
		keys = append(keys, key.Key)
		if key.Key == "b" {
			return Stop
		}
		return Continue
	})
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestWalk_HandlerMayRewriteLeaf(t *testing.T) {
	root := parseNode(t, "x:\n  $ref: part\ny:\n  $ref: part\n")

	Walk(root, func(path Path, key Segment, leaf *yaml.Node) Action {
		if key.Key == "$ref" {
			leaf.Value = "#/definitions/part"
		}
		return Continue
	})

	for _, v := range collect(root) {
		assert.Equal(t, "#/definitions/part", v.Value)
	}
}

func TestWalk_AppendedEntriesNotVisited(t *testing.T) {
	root := parseNode(t, "a: 1\nb: 2\n")
	mapping := root.Content[0]

	var keys []string
	Walk(root, func(path Path, key Segment, leaf *yaml.Node) Action {
		keys = append(keys, key.Key)
		if key.Key == "a" {
			mapping.Content = append(mapping.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "late"},
				&yaml.Node{Kind: yaml.ScalarNode, Value: "3"},
			)
		}
		return Continue
	})
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestWalk_FollowsAliases(t *testing.T) {
	root := parseNode(t, "base: &b\n  $ref: part\ncopy: *b\n")

	assert.Equal(t, []visit{
		{Path: "/base", Key: "$ref", Value: "part"},
		{Path: "/copy", Key: "$ref", Value: "part"},
	}, collect(root))
}

func TestWalk_PathCloneSurvivesWalk(t *testing.T) {
	root := parseNode(t, "a:\n  b:\n    c: 1\nd:\n  e: 2\n")

	var kept []Path
	Walk(root, func(path Path, key Segment, leaf *yaml.Node) Action {
		kept = append(kept, path.Clone())
		return Continue
	})

	require.Len(t, kept, 2)
	assert.Equal(t, "/a/b", kept[0].String())
	assert.Equal(t, "/d", kept[1].String())
}

func TestPath(t *testing.T) {
	var p Path
	assert.Equal(t, "", p.String())
	assert.Equal(t, "#", p.Pointer())

	p = p.Child(KeySegment("properties")).Child(KeySegment("a/b")).Child(IndexSegment(2))
	assert.Equal(t, "/properties/a~1b/2", p.String())
	assert.Equal(t, "#/properties/a~1b/2", p.Pointer())

	child := p.Child(KeySegment("x"))
	assert.Len(t, p, 3, "Child must not modify the receiver")
	assert.Len(t, child, 4)
}

func TestSegment(t *testing.T) {
	assert.False(t, KeySegment("0").IsIndex())
	assert.Equal(t, "0", KeySegment("0").String())
	assert.True(t, IndexSegment(0).IsIndex())
	assert.Equal(t, "7", IndexSegment(7).String())
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "Continue", Continue.String())
	assert.Equal(t, "Stop", Stop.String())
	assert.Equal(t, "Action(9)", Action(9).String())
	assert.True(t, Stop.IsValid())
	assert.False(t, Action(-1).IsValid())
}
