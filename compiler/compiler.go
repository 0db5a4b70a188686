package compiler

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v4"

	"github.com/figadore/json-schema-generator/document"
	"github.com/figadore/json-schema-generator/loader"
	"github.com/figadore/json-schema-generator/reference"
	"github.com/figadore/json-schema-generator/resolver"
	"github.com/figadore/json-schema-generator/schemaerrors"
	"github.com/figadore/json-schema-generator/walker"
)

// Result contains a compiled schema and information about how it was built.
type Result struct {
	// Document is the compiled schema.
	Document *document.Document
	// SourcePath is the root document's path, or its source name for
	// reader and byte input.
	SourcePath string
	// BaseDir is the directory referenced documents were loaded from.
	BaseDir string
	// ID is the root document's declared identifier, if any.
	ID string
	// Definitions lists the identifiers under definitions in output order.
	Definitions []string
	// Stats counts markers and documents handled by the resolution pass.
	Stats resolver.Stats
	// Warnings lists references in the output that do not resolve.
	// Only populated with WithVerifyPointers.
	Warnings []string
	// LoadTime is the time spent reading and parsing the root document.
	LoadTime time.Duration
	// ResolveTime is the time spent resolving references.
	ResolveTime time.Duration
}

// JSON encodes the compiled schema as JSON with mapping keys in document
// order. An empty indent produces compact output.
func (r *Result) JSON(indent string) ([]byte, error) {
	if indent == "" {
		return r.Document.MarshalJSON()
	}
	return r.Document.MarshalIndentJSON("", indent)
}

// YAML encodes the compiled schema as YAML with mapping keys in document
// order.
func (r *Result) YAML() ([]byte, error) {
	return r.Document.YAML()
}

// Generate compiles the schema at filePath, loading referenced documents
// from the same directory.
func Generate(filePath string) (*Result, error) {
	return GenerateWithOptions(WithFilePath(filePath))
}

// GenerateWithOptions compiles a schema using functional options.
//
// Example:
//
//	result, err := compiler.GenerateWithOptions(
//	    compiler.WithFilePath("schemas/car.yaml"),
//	    compiler.WithVerifyPointers(true),
//	)
//
// Either the fully compiled schema is returned or an error; there is no
// partial result.
func GenerateWithOptions(opts ...Option) (*Result, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("compiler: invalid options: %w", err)
	}

	g := &generator{cfg: cfg, logger: cfg.logger}
	if g.logger == nil {
		g.logger = resolver.NopLogger{}
	}
	return g.generate()
}

type generator struct {
	cfg    *generateConfig
	logger resolver.Logger
}

func (g *generator) generate() (*Result, error) {
	start := time.Now()
	root, baseDir, baseFS, err := g.readRoot()
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(start)

	l, err := g.newLoader(baseDir, baseFS)
	if err != nil {
		return nil, err
	}

	resolverOpts := []resolver.Option{
		resolver.WithLogger(g.logger),
		resolver.WithRebaseSelfRefs(g.cfg.rebaseSelfRefs),
	}
	if g.cfg.maxDepth > 0 {
		resolverOpts = append(resolverOpts, resolver.WithMaxDepth(g.cfg.maxDepth))
	}
	r, err := resolver.New(root, nil, l, resolverOpts...)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	compiled, err := r.Resolve()
	if err != nil {
		return nil, err
	}
	resolveTime := time.Since(start)

	result := &Result{
		Document:    compiled,
		SourcePath:  root.Source(),
		BaseDir:     baseDir,
		ID:          root.ID(),
		Definitions: compiled.DefinitionIDs(),
		Stats:       r.Stats(),
		LoadTime:    loadTime,
		ResolveTime: resolveTime,
	}
	if g.cfg.verifyPointers {
		result.Warnings = g.verifyPointers(compiled)
	}
	g.logger.Debug("schema compiled",
		"source", result.SourcePath,
		"definitions", len(result.Definitions),
		"markers", result.Stats.Markers,
		"documents", result.Stats.Documents)
	return result, nil
}

// readRoot reads and parses the root document and works out where
// referenced documents live. baseFS is nil when they are read from the
// operating system directory baseDir.
func (g *generator) readRoot() (doc *document.Document, baseDir string, baseFS fs.FS, err error) {
	cfg := g.cfg
	maxSize := cfg.maxFileSize
	if maxSize == 0 {
		maxSize = loader.DefaultMaxFileSize
	}

	var data []byte
	var source string
	switch {
	case cfg.filePath != nil:
		source = *cfg.filePath
		if cfg.fsys != nil {
			baseDir = path.Dir(source)
			data, err = readFS(cfg.fsys, source, maxSize)
		} else {
			baseDir = filepath.Dir(source)
			data, err = readFile(source, maxSize)
		}
	case cfg.reader != nil:
		source = "<reader>"
		baseDir = "."
		data, err = loader.ReadAll(cfg.reader, source, maxSize)
	default:
		source = "<bytes>"
		baseDir = "."
		data = cfg.bytes
		if int64(len(data)) > maxSize {
			err = &schemaerrors.ResourceLimitError{
				ResourceType: "file_size",
				Limit:        maxSize,
				Actual:       int64(len(data)),
				Message:      "input exceeds maximum size",
			}
		}
	}
	if err != nil {
		return nil, "", nil, err
	}

	if cfg.sourceName != nil {
		source = *cfg.sourceName
	}
	if cfg.baseDir != nil {
		baseDir = *cfg.baseDir
	}
	if cfg.fsys != nil {
		baseFS, err = fs.Sub(cfg.fsys, path.Clean(baseDir))
		if err != nil {
			return nil, "", nil, &schemaerrors.ConfigError{Option: "base dir", Value: baseDir, Cause: err}
		}
	}

	doc, err = document.Parse(data, source)
	if err != nil {
		return nil, "", nil, err
	}
	g.logger.Debug("root document loaded", "source", source, "id", doc.ID(), "bytes", len(data))
	return doc, baseDir, baseFS, nil
}

func (g *generator) newLoader(baseDir string, baseFS fs.FS) (*loader.FSLoader, error) {
	opts := []loader.Option{loader.WithLogger(g.logger)}
	if g.cfg.extension != "" {
		opts = append(opts, loader.WithExtension(g.cfg.extension))
	}
	if g.cfg.maxFileSize > 0 {
		opts = append(opts, loader.WithMaxFileSize(g.cfg.maxFileSize))
	}
	if g.cfg.maxCachedDocuments > 0 {
		opts = append(opts, loader.WithMaxCachedDocuments(g.cfg.maxCachedDocuments))
	}
	if baseFS != nil {
		return loader.New(baseFS, append(opts, loader.WithBaseDir(baseDir))...)
	}
	return loader.NewDir(baseDir, opts...)
}

// verifyPointers reports every reference in doc that does not resolve
// against doc itself.
func (g *generator) verifyPointers(doc *document.Document) []string {
	var warnings []string
	walker.Walk(doc.Root(), func(p walker.Path, key walker.Segment, leaf *yaml.Node) walker.Action {
		if key.IsIndex() || key.Key != reference.Key {
			return walker.Continue
		}
		at := p.Child(key).Pointer()
		ref, err := reference.Parse(leaf.Value)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("%s: %v", at, err))
		case !ref.IsSelf():
			warnings = append(warnings, fmt.Sprintf("%s: %q is not a local reference", at, leaf.Value))
		default:
			if _, err := doc.Lookup(leaf.Value); err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %q does not resolve: %v", at, leaf.Value, err))
			}
		}
		return walker.Continue
	})
	for _, w := range warnings {
		g.logger.Warn("dangling reference", "detail", w)
	}
	return warnings
}

func readFile(name string, maxSize int64) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &schemaerrors.LoadError{Path: name, Cause: err}
	}
	defer func() { _ = f.Close() }()
	return loader.ReadAll(f, name, maxSize)
}

func readFS(fsys fs.FS, name string, maxSize int64) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, &schemaerrors.LoadError{Path: name, Cause: err}
	}
	defer func() { _ = f.Close() }()
	return loader.ReadAll(f, name, maxSize)
}
