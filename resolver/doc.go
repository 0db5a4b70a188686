// Package resolver compiles "$ref" markers across a tree of schema
// documents into pointers inside a single compiled document.
//
// A [Resolver] owns a clone of one document and a registry from document
// identifier to location in the compiled output. [Resolver.Resolve] walks
// the clone and handles every "$ref" leaf:
//
//   - "#/..." points into the same document and is left alone.
//   - "part" or "part#/..." naming a document this resolver has already
//     inlined is rewritten to "#/definitions/part" plus the path.
//   - Any other identifier is loaded, resolved by a child Resolver,
//     written to the compiled document's definitions under its identifier
//     and then rewritten as above.
//
// Children share the compiled document, loader and logger with their
// parent but start with an empty registry, so every document resolves its
// own references independently. Referencing a document that is still being
// resolved further up the chain fails with
// [schemaerrors.ErrCircularReference].
//
// Most callers should use the compiler package, which loads the root
// document and builds the loader.
//
//	l, _ := loader.NewDir("schemas")
//	root, _ := document.ReadFile("schemas/car.yaml")
//	r, _ := resolver.New(root, nil, l)
//	compiled, err := r.Resolve()
package resolver
