// Package compiler is the programmatic entry point for compiling a schema
// and the documents it references into one self-contained schema.
//
// Each "$ref" naming another document ("part", "part#/definitions/wheel")
// is replaced by a pointer into the compiled schema's definitions
// ("#/definitions/part", "#/definitions/part/definitions/wheel") and the
// referenced document is inlined there once. Referenced documents are read
// from the root document's directory as <id>.yaml.
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
// # Options
//
// [GenerateWithOptions] takes exactly one input ([WithFilePath],
// [WithReader] or [WithBytes]) plus any of:
//
//   - [WithBaseDir], [WithFS]: where referenced documents are read from
//   - [WithSourceName]: name for reader and byte input in errors
//   - [WithExtension]: file extension of referenced documents
//   - [WithLogger]: structured debug output
//   - [WithMaxDepth], [WithMaxFileSize], [WithMaxCachedDocuments]: limits
//   - [WithRebaseSelfRefs]: move "#/..." references of inlined documents
//   - [WithVerifyPointers]: report references that do not resolve
//
// # Errors
//
// Errors come from the schemaerrors package and can be matched with
// errors.Is: ErrLoad for unreadable files, ErrParse for malformed
// documents, ErrReferenceSyntax for bad "$ref" values,
// ErrCircularReference for documents that reference an ancestor, and
// ErrResourceLimit when a limit is exceeded.
package compiler
