// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes schemagen capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	schemagen "github.com/figadore/json-schema-generator"
)

const serverInstructions = `schemagen MCP server: compiles JSON schemas that reference each other by id into one self-contained schema, and lists the $ref markers of a schema.

A reference "part" or "part#/definitions/wheel" is read from part.yaml next to the referencing file; compiling copies it under the top-level "definitions" and rewrites the reference to "#/definitions/part" or "#/definitions/part/definitions/wheel".

Configuration: all defaults come from SCHEMAGEN_* environment variables (or a .env file in the working directory):
- SCHEMAGEN_EXTENSION (default: .yaml): extension of referenced schema files
- SCHEMAGEN_MAX_DEPTH (default: 100): maximum nesting of referenced documents
- SCHEMAGEN_MAX_FILE_SIZE (default: 10485760): maximum size of any document in bytes
- SCHEMAGEN_MAX_CACHED_DOCUMENTS (default: 100): maximum number of distinct documents per call
- SCHEMAGEN_REBASE_SELF_REFS (default: false): default for generate's rebase_self_refs
- SCHEMAGEN_ROOT: when set, files outside this directory cannot be read
- SCHEMAGEN_REFS_LIMIT (default: 100): default result limit for refs`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	cfg = loadConfig()

	server := mcp.NewServer(
		&mcp.Implementation{Name: "schemagen", Version: schemagen.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate",
		Description: "Compile a schema and every schema it references into one self-contained schema. Provide exactly one of file or content; content needs base_dir when it references other schemas outside the working directory. Returns the compiled document as text (format json or yaml), the definitions that were inlined, and counts. Use verify=true to report references in the output that do not resolve.",
	}, handleGenerate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refs",
		Description: "List the $ref markers of one schema without loading the schemas they point to. Each entry has the JSON pointer of the marker, the reference value, the referenced object and path, and its kind: self (#...), external (another document), or invalid. Filter by kind or object (supports * and ? glob). Use group_by (kind or object) to get counts instead of individual items. Use offset/limit to paginate.",
	}, handleRefs)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.RefsLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.RefsLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in group_by results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		counts[keyFn(item)]++
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// validateChoice checks that value is empty or one of allowed.
func validateChoice(name, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid %s value %q; valid values: %s", name, value, strings.Join(allowed, ", "))
}

// validateGlobPattern checks whether a glob pattern is syntactically valid.
// Call this once before a filter loop so matchGlob never encounters an
// invalid pattern at match time.
func validateGlobPattern(pattern string) error {
	if pattern == "" || !strings.ContainsAny(pattern, "*?[") {
		return nil
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return nil
}

// matchGlob reports whether name matches pattern. Patterns without glob
// characters match exactly.
func matchGlob(pattern, name string) bool {
	if !strings.ContainsAny(pattern, "*?[") {
		return pattern == name
	}
	ok, _ := path.Match(pattern, name)
	return ok
}
