// Package schemagen compiles JSON schemas written as YAML (or JSON) files
// that reference each other by identifier into a single self-contained
// schema.
//
// A schema file declares its identifier with a top-level "id" and points at
// other schemas with "$ref" values of the form "<id>" or "<id>#<pointer>".
// Compiling copies every referenced document into the top-level
// "definitions" mapping under its identifier and rewrites each reference to
// a local pointer, so the output needs nothing but itself.
//
// # Packages
//
//   - compiler: entry point; Generate and GenerateWithOptions
//   - resolver: recursive reference resolution with a shared registry
//   - reference: parsing of "$ref" strings
//   - walker: depth-first traversal of document leaves
//   - document: ordered document model, JSON/YAML output and pointers
//   - loader: reading documents by identifier from a directory or fs.FS
//   - schemaerrors: error types shared by all packages
//
// # Quick Start
//
//	result, err := compiler.Generate("schemas/car.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := result.JSON("    ")
//	fmt.Println(string(out))
//
// # Command Line
//
// The schemagen command prints the compiled schema of one file:
//
//	schemagen schemas/car.yaml > car.json
//
// The schemagen-mcp command serves the same operations over the Model
// Context Protocol.
package schemagen
