package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.yaml.in/yaml/v4"

	"github.com/figadore/json-schema-generator/reference"
	"github.com/figadore/json-schema-generator/walker"
)

// Reference kinds reported by the refs tool.
const (
	kindSelf     = "self"
	kindExternal = "external"
	kindInvalid  = "invalid"
)

type refsInput struct {
	Schema  schemaInput `json:"schema"             jsonschema:"The schema whose references to list"`
	Kind    string      `json:"kind,omitempty"     jsonschema:"Filter by kind: self, external or invalid"`
	Object  string      `json:"object,omitempty"   jsonschema:"Filter by referenced object id (supports * and ? glob, e.g. part*)"`
	GroupBy string      `json:"group_by,omitempty" jsonschema:"Group results and return counts instead of individual items. Values: kind, object"`
	Limit   int         `json:"limit,omitempty"    jsonschema:"Maximum number of results to return (default 100)"`
	Offset  int         `json:"offset,omitempty"   jsonschema:"Skip the first N results (for pagination)"`
	// RebaseSelfRefs mirrors generate's option of the same name; it decides
	// the compiled value of references to the document's own id.
	RebaseSelfRefs *bool `json:"rebase_self_refs,omitempty" jsonschema:"Report compiled values as generate would with rebase_self_refs (default from SCHEMAGEN_REBASE_SELF_REFS)"`
}

type refEntry struct {
	// Pointer is the JSON pointer of the "$ref" value in the document.
	Pointer string `json:"pointer"`
	Ref     string `json:"ref"`
	Kind    string `json:"kind"`
	Object  string `json:"object,omitempty"`
	Path    string `json:"path,omitempty"`
	// Compiled is the value the reference has after compilation.
	Compiled string `json:"compiled,omitempty"`
	Error    string `json:"error,omitempty"`
}

type refsOutput struct {
	ID       string       `json:"id,omitempty"`
	Total    int          `json:"total"`
	Matched  int          `json:"matched"`
	Returned int          `json:"returned"`
	Refs     []refEntry   `json:"refs,omitempty"`
	Groups   []groupCount `json:"groups,omitempty"`
}

func handleRefs(_ context.Context, _ *mcp.CallToolRequest, input refsInput) (*mcp.CallToolResult, any, error) {
	if err := validateChoice("kind", input.Kind, []string{kindSelf, kindExternal, kindInvalid}); err != nil {
		return errResult(err), nil, nil
	}
	if err := validateChoice("group_by", input.GroupBy, []string{"kind", "object"}); err != nil {
		return errResult(err), nil, nil
	}
	if err := validateGlobPattern(input.Object); err != nil {
		return errResult(err), nil, nil
	}

	doc, err := input.Schema.document()
	if err != nil {
		return errResult(err), nil, nil
	}

	rebase := cfg.RebaseSelfRefs
	if input.RebaseSelfRefs != nil {
		rebase = *input.RebaseSelfRefs
	}

	all := collectRefs(doc.Root(), doc.ID(), rebase)
	filtered := make([]refEntry, 0, len(all))
	for _, e := range all {
		if input.Kind != "" && e.Kind != input.Kind {
			continue
		}
		if input.Object != "" && !matchGlob(input.Object, e.Object) {
			continue
		}
		filtered = append(filtered, e)
	}

	output := refsOutput{
		ID:      doc.ID(),
		Total:   len(all),
		Matched: len(filtered),
	}
	if input.GroupBy != "" {
		groups := groupAndSort(filtered, func(e refEntry) string {
			if input.GroupBy == "kind" {
				return e.Kind
			}
			return e.Object
		})
		output.Groups = paginate(groups, input.Offset, input.Limit)
		output.Returned = len(output.Groups)
		return nil, output, nil
	}

	output.Refs = paginate(filtered, input.Offset, input.Limit)
	output.Returned = len(output.Refs)
	return nil, output, nil
}

// collectRefs lists every "$ref" marker under root in document order. A
// reference naming the document's own id counts as a self reference; it
// compiles to "#/definitions/<id>" unless rebase is set, as in the resolver.
func collectRefs(root *yaml.Node, id string, rebase bool) []refEntry {
	var refs []refEntry
	walker.Walk(root, func(p walker.Path, key walker.Segment, leaf *yaml.Node) walker.Action {
		if key.IsIndex() || key.Key != reference.Key {
			return walker.Continue
		}
		e := refEntry{Pointer: p.Child(key).Pointer(), Ref: leaf.Value}
		if leaf.ShortTag() != "!!str" {
			e.Kind = kindInvalid
			e.Error = "reference value is not a string"
			refs = append(refs, e)
			return walker.Continue
		}

		ref, err := reference.Parse(leaf.Value)
		switch {
		case err != nil:
			e.Kind = kindInvalid
			e.Error = err.Error()
		case ref.IsSelf():
			e.Kind = kindSelf
			e.Object = ref.Object
			e.Path = ref.Path
			e.Compiled = ref.Rebase(reference.SelfObject)
		case id != "" && ref.Object == id:
			e.Kind = kindSelf
			e.Object = ref.Object
			e.Path = ref.Path
			e.Compiled = ref.Rebase(reference.DefinitionRef(id))
			if rebase {
				e.Compiled = ref.Rebase(reference.SelfObject)
			}
		default:
			e.Kind = kindExternal
			e.Object = ref.Object
			e.Path = ref.Path
			e.Compiled = ref.Rebase(reference.DefinitionRef(ref.Object))
		}
		refs = append(refs, e)
		return walker.Continue
	})
	return refs
}
