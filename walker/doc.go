// Package walker provides depth-first traversal of schema document trees.
//
// The walker visits every scalar leaf of a [yaml.Node] tree in document
// order and reports where it was found. It is used by the resolver to find
// "$ref" markers, but knows nothing about references itself.
//
// # Quick Start
//
// Collect every "$ref" value in a document:
//
//	doc, _ := document.Parse(data, "car.yaml")
//
//	var refs []string
//	walker.Walk(doc.Root(), func(path walker.Path, key walker.Segment, leaf *yaml.Node) walker.Action {
//	    if key.Key == "$ref" {
//	        refs = append(refs, leaf.Value)
//	    }
//	    return walker.Continue
//	})
//
// # Paths
//
// Each call receives the [Path] from the root to the container holding the
// leaf plus the leaf's own [Segment]. Mapping entries use [Segment.Key] and
// sequence elements use [Segment.Index]. [Path.String] renders a JSON
// pointer, so the leaf at properties.wheel["$ref"] is reported with the path
// "/properties/wheel" and the key "$ref".
//
// The path slice is pooled and reused for the whole walk. Handlers that need
// to keep it must call [Path.Clone].
//
// # Flow Control
//
// Handlers return an [Action]:
//
//   - [Continue]: keep walking
//   - [Stop]: end the walk; no further leaves are visited
//
// Handlers that fail usually record the error in a closure variable and
// return [Stop]:
//
//	var walkErr error
//	walker.Walk(root, func(path walker.Path, key walker.Segment, leaf *yaml.Node) walker.Action {
//	    if err := visit(path, leaf); err != nil {
//	        walkErr = err
//	        return walker.Stop
//	    }
//	    return walker.Continue
//	})
//
// # Mutation
//
// Handlers may rewrite the leaf they are given. Entries added to a mapping
// or sequence after the walker has entered it are not visited, so a handler
// may append to the tree without extending the walk.
package walker
