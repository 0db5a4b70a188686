package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/figadore/json-schema-generator/compiler"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type generateInput struct {
	Schema         schemaInput `json:"schema"                     jsonschema:"The schema to compile"`
	Format         string      `json:"format,omitempty"           jsonschema:"Output format: json (default) or yaml"`
	Compact        bool        `json:"compact,omitempty"          jsonschema:"Emit JSON on one line instead of indenting with 4 spaces"`
	RebaseSelfRefs *bool       `json:"rebase_self_refs,omitempty" jsonschema:"Rewrite '#/...' and own-id references to where their schema ends up in the output (default from SCHEMAGEN_REBASE_SELF_REFS)"`
	Verify         bool        `json:"verify,omitempty"           jsonschema:"Report references in the output that do not resolve"`
}

type generateOutput struct {
	Document    string   `json:"document"`
	Format      string   `json:"format"`
	Source      string   `json:"source"`
	ID          string   `json:"id,omitempty"`
	Definitions []string `json:"definitions,omitempty"`
	Markers     int      `json:"markers"`
	Rewritten   int      `json:"rewritten"`
	Documents   int      `json:"documents"`
	Warnings    []string `json:"warnings,omitempty"`
}

func handleGenerate(_ context.Context, _ *mcp.CallToolRequest, input generateInput) (*mcp.CallToolResult, any, error) {
	format := strings.ToLower(input.Format)
	if format == "" {
		format = formatJSON
	}
	if err := validateChoice("format", format, []string{formatJSON, formatYAML}); err != nil {
		return errResult(err), nil, nil
	}

	opts, err := input.Schema.compilerOptions()
	if err != nil {
		return errResult(err), nil, nil
	}
	rebase := cfg.RebaseSelfRefs
	if input.RebaseSelfRefs != nil {
		rebase = *input.RebaseSelfRefs
	}
	opts = append(opts,
		compiler.WithRebaseSelfRefs(rebase),
		compiler.WithVerifyPointers(input.Verify))

	result, err := compiler.GenerateWithOptions(opts...)
	if err != nil {
		return errResult(err), nil, nil
	}

	var data []byte
	switch {
	case format == formatYAML:
		data, err = result.YAML()
	case input.Compact:
		data, err = result.JSON("")
	default:
		data, err = result.JSON("    ")
	}
	if err != nil {
		return errResult(fmt.Errorf("encoding %s: %w", format, err)), nil, nil
	}

	output := generateOutput{
		Document:    string(data),
		Format:      format,
		Source:      result.SourcePath,
		ID:          result.ID,
		Definitions: result.Definitions,
		Markers:     result.Stats.Markers,
		Rewritten:   result.Stats.Rewritten,
		Documents:   result.Stats.Documents,
		Warnings:    result.Warnings,
	}
	return nil, output, nil
}
