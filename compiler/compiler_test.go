package compiler

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/figadore/json-schema-generator/internal/testutil"
	"github.com/figadore/json-schema-generator/resolver"
	"github.com/figadore/json-schema-generator/schemaerrors"
)

func TestGenerate_Car(t *testing.T) {
	dir := testutil.WriteSchemaDir(t, testutil.VehicleSchemas())
	carPath := filepath.Join(dir, "car.yaml")

	result, err := Generate(carPath)
	require.NoError(t, err)

	assert.Equal(t, carPath, result.SourcePath)
	assert.Equal(t, dir, result.BaseDir)
	assert.Equal(t, "car", result.ID)
	assert.Equal(t, []string{"part"}, result.Definitions)
	assert.Equal(t, 2, result.Stats.Markers)
	assert.Equal(t, 1, result.Stats.Documents)
	assert.Empty(t, result.Warnings)

	v, err := result.Document.Interface()
	require.NoError(t, err)
	schema := v.(map[string]any)
	assert.Contains(t, schema, "$schema")
	wheel := schema["properties"].(map[string]any)["wheel"].(map[string]any)
	assert.Equal(t, "#/definitions/part/definitions/wheel", wheel["$ref"])
}

func TestGenerate_JSONOutput(t *testing.T) {
	dir := testutil.WriteSchemaDir(t, map[string]string{
		"root.yaml": "id: root\nb:\n  $ref: leaf\na: 1\n",
		"leaf.yaml": "id: leaf\ntype: string\n",
	})

	result, err := Generate(filepath.Join(dir, "root.yaml"))
	require.NoError(t, err)

	compact, err := result.JSON("")
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":"root","b":{"$ref":"#/definitions/leaf"},"a":1,"definitions":{"leaf":{"id":"leaf","type":"string"}}}`,
		string(compact))

	indented, err := result.JSON("    ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(indented), "{\n    \"id\": \"root\",\n"))

	y, err := result.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(y), "#/definitions/leaf")
	assert.True(t, strings.HasPrefix(string(y), "id: root\n"))
}

func TestGenerate_ArrayOfCars(t *testing.T) {
	dir := testutil.WriteSchemaDir(t, testutil.VehicleSchemas())

	result, err := GenerateWithOptions(
		WithFilePath(filepath.Join(dir, "cars.yaml")),
		WithVerifyPointers(true),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"part", "car"}, result.Definitions)
	assert.Empty(t, result.Warnings)
}

func TestGenerate_Errors(t *testing.T) {
	dir := testutil.WriteSchemaDir(t, map[string]string{
		"missing-ref.yaml": "x:\n  $ref: nowhere\n",
		"bad-ref.yaml":     "x:\n  $ref: a#b#c\n",
		"broken.yaml":      "a: [1, 2\n",
		"cycle-a.yaml":     "id: cycle-a\nx:\n  $ref: cycle-b\n",
		"cycle-b.yaml":     "id: cycle-b\nx:\n  $ref: cycle-a\n",
	})

	tests := []struct {
		name string
		file string
		want error
	}{
		{"missing root", "nope.yaml", schemaerrors.ErrLoad},
		{"missing referenced document", "missing-ref.yaml", schemaerrors.ErrLoad},
		{"malformed reference", "bad-ref.yaml", schemaerrors.ErrReferenceSyntax},
		{"malformed document", "broken.yaml", schemaerrors.ErrParse},
		{"cycle", "cycle-a.yaml", schemaerrors.ErrCircularReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Generate(filepath.Join(dir, tt.file))
			require.Error(t, err)
			assert.Nil(t, result, "no partial output on error")
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
		})
	}
}

func TestGenerate_MissingRootIsNotExist(t *testing.T) {
	_, err := Generate(filepath.Join(t.TempDir(), "car.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestGenerateWithOptions_InputValidation(t *testing.T) {
	_, err := GenerateWithOptions()
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))
	assert.Contains(t, err.Error(), "must specify an input source")

	_, err = GenerateWithOptions(WithFilePath("a.yaml"), WithBytes([]byte("id: a\n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one input source")

	_, err = GenerateWithOptions(WithReader(nil))
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))

	_, err = GenerateWithOptions(WithBytes([]byte("id: a\n")), WithMaxDepth(-1))
	assert.True(t, errors.Is(err, schemaerrors.ErrConfig))
}

func TestGenerateWithOptions_Bytes(t *testing.T) {
	dir := testutil.WriteSchemaDir(t, testutil.VehicleSchemas())

	result, err := GenerateWithOptions(
		WithBytes([]byte(testutil.CarSchema)),
		WithBaseDir(dir),
		WithSourceName("inline-car"),
	)
	require.NoError(t, err)
	assert.Equal(t, "inline-car", result.SourcePath)
	assert.Equal(t, dir, result.BaseDir)
	assert.Equal(t, []string{"part"}, result.Definitions)
}

func TestGenerateWithOptions_EmptyBytes(t *testing.T) {
	_, err := GenerateWithOptions(WithBytes(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, schemaerrors.ErrParse))
}

func TestGenerateWithOptions_Reader(t *testing.T) {
	result, err := GenerateWithOptions(
		WithReader(strings.NewReader(testutil.CarsSchema)),
		WithFS(testutil.MapFS(testutil.VehicleSchemas())),
	)
	require.NoError(t, err)
	assert.Equal(t, "<reader>", result.SourcePath)
	assert.Equal(t, []string{"part", "car"}, result.Definitions)
}

func TestGenerateWithOptions_FS(t *testing.T) {
	files := map[string]string{}
	for name, content := range testutil.VehicleSchemas() {
		files["schemas/"+name] = content
	}

	result, err := GenerateWithOptions(
		WithFS(testutil.MapFS(files)),
		WithFilePath("schemas/car-1.0.yaml"),
	)
	require.NoError(t, err)
	assert.Equal(t, "schemas", result.BaseDir)
	assert.Equal(t, []string{"part-1.0"}, result.Definitions)
}

func TestGenerateWithOptions_Extension(t *testing.T) {
	fsys := testutil.MapFS(map[string]string{
		"root.json": `{"id": "root", "x": {"$ref": "leaf"}}`,
		"leaf.json": `{"id": "leaf", "type": "integer"}`,
	})

	result, err := GenerateWithOptions(
		WithFS(fsys),
		WithFilePath("root.json"),
		WithExtension(".json"),
	)
	require.NoError(t, err)

	out, err := result.JSON("")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"root","x":{"$ref":"#/definitions/leaf"},"definitions":{"leaf":{"id":"leaf","type":"integer"}}}`, string(out))
}

func TestGenerateWithOptions_Limits(t *testing.T) {
	fsys := testutil.MapFS(testutil.VehicleSchemas())

	t.Run("max file size", func(t *testing.T) {
		_, err := GenerateWithOptions(WithFS(fsys), WithFilePath("car.yaml"), WithMaxFileSize(16))
		assert.True(t, errors.Is(err, schemaerrors.ErrResourceLimit))
	})

	t.Run("max depth", func(t *testing.T) {
		_, err := GenerateWithOptions(WithFS(fsys), WithFilePath("cars.yaml"), WithMaxDepth(1))
		assert.True(t, errors.Is(err, schemaerrors.ErrResourceLimit))
	})

	t.Run("max cached documents", func(t *testing.T) {
		_, err := GenerateWithOptions(WithFS(fsys), WithFilePath("cars.yaml"), WithMaxCachedDocuments(1))
		assert.True(t, errors.Is(err, schemaerrors.ErrResourceLimit))
	})
}

func TestGenerateWithOptions_VerifyPointers(t *testing.T) {
	fsys := testutil.MapFS(map[string]string{
		"root.yaml": "id: root\nok:\n  $ref: '#/definitions/leaf'\nbroken:\n  $ref: '#/nowhere'\nx:\n  $ref: leaf\n",
		"leaf.yaml": "id: leaf\n",
	})

	result, err := GenerateWithOptions(WithFS(fsys), WithFilePath("root.yaml"), WithVerifyPointers(true))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "#/broken/$ref")
	assert.Contains(t, result.Warnings[0], `"#/nowhere"`)
}

func TestGenerateWithOptions_RebaseSelfRefs(t *testing.T) {
	fsys := testutil.MapFS(map[string]string{
		"root.yaml": "id: root\nx:\n  $ref: part\n",
		"part.yaml": "id: part\ndefinitions:\n  a:\n    type: string\nb:\n  $ref: '#/definitions/a'\n",
	})

	faithful, err := GenerateWithOptions(WithFS(fsys), WithFilePath("root.yaml"), WithVerifyPointers(true))
	require.NoError(t, err)
	assert.Len(t, faithful.Warnings, 1, "unrebased self reference dangles once inlined")

	rebased, err := GenerateWithOptions(WithFS(fsys), WithFilePath("root.yaml"),
		WithRebaseSelfRefs(true), WithVerifyPointers(true))
	require.NoError(t, err)
	assert.Empty(t, rebased.Warnings)
}

func TestGenerateWithOptions_Logger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := resolver.NewSlogAdapter(slog.New(handler))

	_, err := GenerateWithOptions(
		WithFS(testutil.MapFS(testutil.VehicleSchemas())),
		WithFilePath("car.yaml"),
		WithLogger(logger),
	)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "root document loaded")
	assert.Contains(t, buf.String(), "document loaded")
	assert.Contains(t, buf.String(), "schema compiled")
}
