package mcpserver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/figadore/json-schema-generator/compiler"
	"github.com/figadore/json-schema-generator/document"
	"github.com/figadore/json-schema-generator/loader"
	"github.com/figadore/json-schema-generator/schemaerrors"
)

// contentSource names inline content in errors and results.
const contentSource = "<content>"

// schemaInput represents the two ways a schema can be provided to a tool.
// Exactly one of File or Content must be set.
type schemaInput struct {
	File    string `json:"file,omitempty"     jsonschema:"Path to a schema file on disk"`
	Content string `json:"content,omitempty"  jsonschema:"Inline schema document content (JSON or YAML)"`
	BaseDir string `json:"base_dir,omitempty" jsonschema:"Directory referenced schemas are read from (default: the file's directory, or the working directory for content)"`
}

func (in schemaInput) validate() error {
	switch {
	case in.File == "" && in.Content == "":
		return fmt.Errorf("exactly one of file or content must be provided")
	case in.File != "" && in.Content != "":
		return fmt.Errorf("exactly one of file or content must be provided, got both")
	}
	if int64(len(in.Content)) > cfg.MaxFileSize {
		return &schemaerrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        cfg.MaxFileSize,
			Actual:       int64(len(in.Content)),
			Message:      "inline content exceeds maximum size",
		}
	}
	return nil
}

// compilerOptions returns the compiler input options for in, applying the
// server's limits and SCHEMAGEN_ROOT.
func (in schemaInput) compilerOptions() ([]compiler.Option, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	opts := []compiler.Option{
		compiler.WithExtension(cfg.Extension),
		compiler.WithMaxDepth(cfg.MaxDepth),
		compiler.WithMaxFileSize(cfg.MaxFileSize),
		compiler.WithMaxCachedDocuments(cfg.MaxCachedDocuments),
	}

	if cfg.Root != "" {
		opts = append(opts, compiler.WithFS(os.DirFS(cfg.Root)))
	}

	if in.File != "" {
		file, err := rootedPath(in.File)
		if err != nil {
			return nil, err
		}
		opts = append(opts, compiler.WithFilePath(file))
	} else {
		opts = append(opts,
			compiler.WithBytes([]byte(in.Content)),
			compiler.WithSourceName(contentSource))
	}

	if in.BaseDir != "" {
		dir, err := rootedPath(in.BaseDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, compiler.WithBaseDir(dir))
	}
	return opts, nil
}

// document parses the input without resolving references.
func (in schemaInput) document() (*document.Document, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Content != "" {
		return document.Parse([]byte(in.Content), contentSource)
	}

	file, err := rootedPath(in.File)
	if err != nil {
		return nil, err
	}
	var f fs.File
	if cfg.Root != "" {
		f, err = os.DirFS(cfg.Root).Open(file)
	} else {
		f, err = os.Open(file)
	}
	if err != nil {
		return nil, &schemaerrors.LoadError{Path: in.File, Cause: err}
	}
	defer func() { _ = f.Close() }()

	data, err := loader.ReadAll(f, in.File, cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	return document.Parse(data, in.File)
}

// rootedPath maps p into SCHEMAGEN_ROOT when it is set, returning a
// slash-separated path relative to the root. Paths escaping the root are
// rejected. Without a root p is returned unchanged.
func rootedPath(p string) (string, error) {
	if cfg.Root == "" {
		return p, nil
	}
	rel := p
	if filepath.IsAbs(p) {
		root, err := filepath.Abs(cfg.Root)
		if err != nil {
			return "", fmt.Errorf("invalid SCHEMAGEN_ROOT: %w", err)
		}
		if rel, err = filepath.Rel(root, p); err != nil {
			return "", fmt.Errorf("path %q is outside the configured root", p)
		}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	if !fs.ValidPath(rel) {
		return "", &schemaerrors.ReferenceError{
			Ref:             p,
			IsPathTraversal: true,
			Message:         "path is outside the configured root",
		}
	}
	return rel, nil
}
