package reference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figadore/json-schema-generator/schemaerrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantObject string
		wantPath   string
		wantSelf   bool
	}{
		{name: "external", value: "part", wantObject: "part"},
		{name: "versioned external", value: "part-1.0", wantObject: "part-1.0"},
		{name: "external with path", value: "part#/properties/color", wantObject: "part", wantPath: "/properties/color"},
		{name: "external with empty path", value: "part#", wantObject: "part"},
		{name: "self", value: "#/definitions/wheel", wantObject: "#", wantPath: "/definitions/wheel", wantSelf: true},
		{name: "self root", value: "#", wantObject: "#", wantSelf: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Parse(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.wantObject, ref.Object)
			assert.Equal(t, tt.wantPath, ref.Path)
			assert.Equal(t, tt.wantSelf, ref.IsSelf())
			assert.Equal(t, tt.value, ref.String())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"two separators", "a#b#c"},
		{"leading double", "##/x"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.value)
			require.Error(t, err)
			assert.True(t, errors.Is(err, schemaerrors.ErrReferenceSyntax))

			var refErr *schemaerrors.ReferenceError
			require.True(t, errors.As(err, &refErr))
			assert.Equal(t, tt.value, refErr.Ref)
		})
	}
}

func TestParse_MalformedMessageNamesValue(t *testing.T) {
	_, err := Parse("a#b#c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a#b#c"`)
}

func TestReference_String(t *testing.T) {
	assert.Equal(t, "part", Reference{Object: "part"}.String())
	assert.Equal(t, "part#/a", Reference{Object: "part", Path: "/a"}.String())
	assert.Equal(t, "#/a", Reference{Object: SelfObject, Path: "/a"}.String())
}

func TestReference_Rebase(t *testing.T) {
	ref, err := Parse("part#/properties/color")
	require.NoError(t, err)
	assert.Equal(t, "#/definitions/part/properties/color", ref.Rebase(DefinitionRef(ref.Object)))

	whole, err := Parse("part")
	require.NoError(t, err)
	assert.Equal(t, "#/definitions/part", whole.Rebase(DefinitionRef(whole.Object)))

	self, err := Parse("#/definitions/wheel")
	require.NoError(t, err)
	assert.Equal(t, "#/definitions/wheel", self.Rebase(SelfObject))
}

func TestDefinitionRef(t *testing.T) {
	assert.Equal(t, "#/definitions/part", DefinitionRef("part"))
	assert.Equal(t, "#/definitions/car-1.0", DefinitionRef("car-1.0"))
	assert.Equal(t, "#/definitions/a~1b", DefinitionRef("a/b"))
}
