// Package reference parses "$ref" marker values and builds the pointers
// that replace them in compiled output.
package reference

import (
	"strings"

	"github.com/figadore/json-schema-generator/document"
	"github.com/figadore/json-schema-generator/schemaerrors"
)

const (
	// Key is the reserved mapping key of a reference marker.
	Key = "$ref"

	// SelfObject is the object of a reference into its own document.
	SelfObject = "#"

	// DefinitionsKey is the top-level key that holds inlined documents.
	DefinitionsKey = document.DefinitionsKey

	// DefinitionsPrefix prefixes every pointer to an inlined document.
	DefinitionsPrefix = "#/" + DefinitionsKey + "/"

	fragmentSeparator = "#"
)

// Reference is a parsed marker value.
type Reference struct {
	// Original is the marker value as written.
	Original string
	// Object is the identifier of the referenced document, or SelfObject.
	Object string
	// Path is the pointer fragment after '#', e.g. "/definitions/wheel".
	// Empty when the marker names a whole document.
	Path string
}

// Parse splits a marker value into object and path.
//
//	"part"                  -> {Object: "part"}
//	"part#/properties/size" -> {Object: "part", Path: "/properties/size"}
//	"#/definitions/wheel"   -> {Object: "#", Path: "/definitions/wheel"}
//
// A value with more than one '#', or an empty value, is a
// *schemaerrors.ReferenceError with IsSyntax set.
func Parse(value string) (Reference, error) {
	if value == "" {
		return Reference{}, &schemaerrors.ReferenceError{
			Ref:      value,
			IsSyntax: true,
			Message:  "reference is empty",
		}
	}

	switch n := strings.Count(value, fragmentSeparator); {
	case n == 0:
		return Reference{Original: value, Object: value}, nil
	case n > 1:
		return Reference{}, &schemaerrors.ReferenceError{
			Ref:      value,
			IsSyntax: true,
			Message:  "more than one '#' in reference",
		}
	}

	object, path, _ := strings.Cut(value, fragmentSeparator)
	if object == "" {
		object = SelfObject
	}
	return Reference{Original: value, Object: object, Path: path}, nil
}

// IsSelf reports whether r points into the document that contains it.
func (r Reference) IsSelf() bool {
	return r.Object == SelfObject
}

// String returns the marker value r was parsed from, or rebuilds it.
func (r Reference) String() string {
	if r.Original != "" {
		return r.Original
	}
	if r.IsSelf() {
		return SelfObject + r.Path
	}
	if r.Path == "" {
		return r.Object
	}
	return r.Object + fragmentSeparator + r.Path
}

// Rebase returns the marker value that points at the same target once the
// referenced document lives at location, e.g. "#/definitions/part".
func (r Reference) Rebase(location string) string {
	return location + r.Path
}

// DefinitionRef returns the location of an inlined document,
// "#/definitions/<id>", with id escaped as a JSON pointer token.
func DefinitionRef(id string) string {
	return DefinitionsPrefix + document.EscapePointerToken(id)
}
