package compiler

import (
	"io"
	"io/fs"

	"github.com/figadore/json-schema-generator/internal/options"
	"github.com/figadore/json-schema-generator/resolver"
	"github.com/figadore/json-schema-generator/schemaerrors"
)

// Option is a function that configures a generate operation
type Option func(*generateConfig) error

// generateConfig holds configuration for a generate operation
type generateConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte

	sourceName *string
	baseDir    *string
	fsys       fs.FS

	extension      string
	logger         resolver.Logger
	rebaseSelfRefs bool
	verifyPointers bool

	// Resource limits (0 means use default)
	maxDepth           int
	maxFileSize        int64
	maxCachedDocuments int
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*generateConfig, error) {
	cfg := &generateConfig{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := options.ValidateSingleInputSource(
		"compiler: must specify an input source (use WithFilePath, WithReader, or WithBytes)",
		"compiler: must specify exactly one input source",
		cfg.filePath != nil, cfg.reader != nil, cfg.bytes != nil,
	); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithFilePath specifies the root document's file path. Unless WithBaseDir
// is given, referenced documents are loaded from the file's directory.
func WithFilePath(path string) Option {
	return func(cfg *generateConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *generateConfig) error {
		if r == nil {
			return &schemaerrors.ConfigError{Option: "reader", Message: "reader is nil"}
		}
		cfg.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the input source
func WithBytes(data []byte) Option {
	return func(cfg *generateConfig) error {
		if data == nil {
			data = []byte{}
		}
		cfg.bytes = data
		return nil
	}
}

// WithSourceName names reader or byte input in errors and in
// Result.SourcePath.
func WithSourceName(name string) Option {
	return func(cfg *generateConfig) error {
		cfg.sourceName = &name
		return nil
	}
}

// WithBaseDir sets the directory referenced documents are loaded from.
// It defaults to the root file's directory, or the working directory for
// reader and byte input.
func WithBaseDir(dir string) Option {
	return func(cfg *generateConfig) error {
		cfg.baseDir = &dir
		return nil
	}
}

// WithFS loads documents from fsys instead of the operating system. A
// file path given with WithFilePath is then a slash-separated path inside
// fsys, and WithBaseDir, if given, is too.
func WithFS(fsys fs.FS) Option {
	return func(cfg *generateConfig) error {
		if fsys == nil {
			return &schemaerrors.ConfigError{Option: "filesystem", Message: "filesystem is nil"}
		}
		cfg.fsys = fsys
		return nil
	}
}

// WithExtension sets the extension appended to identifiers to find their
// files (default ".yaml").
func WithExtension(ext string) Option {
	return func(cfg *generateConfig) error {
		cfg.extension = ext
		return nil
	}
}

// WithLogger sets a structured logger for debug output.
// Use resolver.NewSlogAdapter to wrap a *slog.Logger.
func WithLogger(l resolver.Logger) Option {
	return func(cfg *generateConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithMaxDepth limits how deeply external documents may nest
// (default resolver.DefaultMaxDepth).
func WithMaxDepth(depth int) Option {
	return func(cfg *generateConfig) error {
		if depth < 0 {
			return &schemaerrors.ConfigError{Option: "max depth", Value: depth, Message: "must not be negative"}
		}
		cfg.maxDepth = depth
		return nil
	}
}

// WithMaxFileSize limits the size of every document read
// (default loader.DefaultMaxFileSize).
func WithMaxFileSize(size int64) Option {
	return func(cfg *generateConfig) error {
		if size < 0 {
			return &schemaerrors.ConfigError{Option: "max file size", Value: size, Message: "must not be negative"}
		}
		cfg.maxFileSize = size
		return nil
	}
}

// WithMaxCachedDocuments limits how many distinct documents may be loaded
// (default loader.DefaultMaxCachedDocuments).
func WithMaxCachedDocuments(n int) Option {
	return func(cfg *generateConfig) error {
		if n < 0 {
			return &schemaerrors.ConfigError{Option: "max cached documents", Value: n, Message: "must not be negative"}
		}
		cfg.maxCachedDocuments = n
		return nil
	}
}

// WithRebaseSelfRefs rewrites "#/..." references inside inlined documents
// to their new location under definitions, and points references that name
// the root document's own id (e.g. "car#/properties/make" in car) at the
// root instead of at "#/definitions/car".
func WithRebaseSelfRefs(enabled bool) Option {
	return func(cfg *generateConfig) error {
		cfg.rebaseSelfRefs = enabled
		return nil
	}
}

// WithVerifyPointers checks that every reference in the output resolves to
// a node of the output and reports the ones that do not in
// Result.Warnings.
func WithVerifyPointers(enabled bool) Option {
	return func(cfg *generateConfig) error {
		cfg.verifyPointers = enabled
		return nil
	}
}
