// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// Schema sources shared by tests. They mirror the files under testdata/.
const (
	// CarSchema references two locations inside PartSchema.
	CarSchema = `$schema: http://json-schema.org/draft-04/schema#
id: car
type: object
properties:
  make:
    type: string
  model:
    type: string
  engine:
    type: string
  wheel:
    $ref: part#/definitions/wheel
  color:
    $ref: part#/properties/color
required:
  - make
  - model
`

	// PartSchema has no references of its own.
	PartSchema = `$schema: http://json-schema.org/draft-04/schema#
id: part
type: object
properties:
  color:
    type: string
    enum:
      - black
      - silver
      - gray
      - green
definitions:
  wheel:
    type: object
    properties:
      color:
        type: string
    required:
      - color
`

	// CarsSchema is an array of CarSchema, so PartSchema is pulled in
	// transitively.
	CarsSchema = `$schema: http://json-schema.org/draft-04/schema#
id: cars
type: array
items:
  $ref: car
`

	// VersionedCarSchema uses an identifier containing a dot.
	VersionedCarSchema = `$schema: http://json-schema.org/draft-04/schema#
id: car-1.0
type: object
properties:
  make:
    type: string
  wheel:
    $ref: part-1.0#/definitions/wheel
`

	// VersionedPartSchema is referenced by VersionedCarSchema.
	VersionedPartSchema = `id: part-1.0
definitions:
  wheel:
    type: object
    properties:
      color:
        type: string
`
)

// VehicleSchemas returns the car/part fixture set keyed by file name.
func VehicleSchemas() map[string]string {
	return map[string]string{
		"car.yaml":      CarSchema,
		"part.yaml":     PartSchema,
		"cars.yaml":     CarsSchema,
		"car-1.0.yaml":  VersionedCarSchema,
		"part-1.0.yaml": VersionedPartSchema,
	}
}

// MapFS builds an in-memory filesystem from file name to content.
func MapFS(files map[string]string) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content), Mode: 0o600}
	}
	return fsys
}

// WriteSchemaDir writes files into a fresh temporary directory and returns
// its path. The directory is removed when the test completes.
func WriteSchemaDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("Failed to write schema file %s: %v", name, err)
		}
	}
	return dir
}
