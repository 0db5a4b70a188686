// Package loader reads schema documents by identifier from a base directory.
//
// A document with identifier "part" lives in the file "part.yaml" (or
// whatever extension is configured) directly under the base directory.
// Loaded documents are parsed once and cached; callers must clone a
// document before mutating it.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/figadore/json-schema-generator/document"
	"github.com/figadore/json-schema-generator/schemaerrors"
)

const (
	// DefaultExtension is appended to an identifier to form its file name.
	DefaultExtension = ".yaml"

	// DefaultMaxFileSize is the largest document file that will be read (10MB).
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// DefaultMaxCachedDocuments caps the number of distinct documents one
	// loader will hold.
	DefaultMaxCachedDocuments = 100
)

// Loader loads documents by identifier.
type Loader interface {
	// Load returns the parsed document for id. The returned document may be
	// shared with other callers and must not be mutated.
	Load(id string) (*document.Document, error)

	// BaseDir returns the directory documents are loaded from, for display.
	BaseDir() string
}

// Logger receives debug events. resolver.Logger satisfies it.
type Logger interface {
	Debug(msg string, attrs ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// FSLoader loads documents from an fs.FS. It is safe for concurrent use.
type FSLoader struct {
	fsys        fs.FS
	baseDir     string
	ext         string
	maxFileSize int64
	maxCached   int
	logger      Logger

	mu    sync.Mutex
	cache map[string]*document.Document
	reads int
}

// Option configures an FSLoader.
type Option func(*FSLoader) error

// WithExtension sets the file extension appended to identifiers.
// A missing leading dot is added.
func WithExtension(ext string) Option {
	return func(l *FSLoader) error {
		if ext == "" || ext == "." {
			return &schemaerrors.ConfigError{Option: "extension", Value: ext, Message: "extension must not be empty"}
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		l.ext = ext
		return nil
	}
}

// WithMaxFileSize sets the largest file, in bytes, the loader will read.
func WithMaxFileSize(n int64) Option {
	return func(l *FSLoader) error {
		if n <= 0 {
			return &schemaerrors.ConfigError{Option: "max file size", Value: n, Message: "must be positive"}
		}
		l.maxFileSize = n
		return nil
	}
}

// WithMaxCachedDocuments sets how many distinct documents may be loaded.
func WithMaxCachedDocuments(n int) Option {
	return func(l *FSLoader) error {
		if n <= 0 {
			return &schemaerrors.ConfigError{Option: "max cached documents", Value: n, Message: "must be positive"}
		}
		l.maxCached = n
		return nil
	}
}

// WithLogger sets the logger for load and cache events.
func WithLogger(logger Logger) Option {
	return func(l *FSLoader) error {
		if logger != nil {
			l.logger = logger
		}
		return nil
	}
}

// WithBaseDir sets the directory name reported by BaseDir and used in
// error messages. NewDir sets it automatically.
func WithBaseDir(dir string) Option {
	return func(l *FSLoader) error {
		l.baseDir = dir
		return nil
	}
}

// New returns a loader reading from fsys.
func New(fsys fs.FS, opts ...Option) (*FSLoader, error) {
	if fsys == nil {
		return nil, &schemaerrors.ConfigError{Option: "filesystem", Message: "filesystem is nil"}
	}
	l := &FSLoader{
		fsys:        fsys,
		ext:         DefaultExtension,
		maxFileSize: DefaultMaxFileSize,
		maxCached:   DefaultMaxCachedDocuments,
		logger:      nopLogger{},
		cache:       make(map[string]*document.Document),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewDir returns a loader reading from the directory dir.
func NewDir(dir string, opts ...Option) (*FSLoader, error) {
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &schemaerrors.LoadError{Path: dir, Cause: err}
	}
	if !info.IsDir() {
		return nil, &schemaerrors.LoadError{Path: dir, Cause: errors.New("not a directory")}
	}
	return New(os.DirFS(dir), append([]Option{WithBaseDir(dir)}, opts...)...)
}

// BaseDir returns the directory documents are loaded from.
func (l *FSLoader) BaseDir() string {
	return l.baseDir
}

// Extension returns the file extension appended to identifiers.
func (l *FSLoader) Extension() string {
	return l.ext
}

// Reads returns how many files have been read, excluding cache hits.
func (l *FSLoader) Reads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reads
}

// Load returns the document stored as <id><ext>.
func (l *FSLoader) Load(id string) (*document.Document, error) {
	name := id + l.ext
	if id == "" || !fs.ValidPath(name) || strings.ContainsRune(name, '\\') {
		return nil, &schemaerrors.ReferenceError{
			Ref:             id,
			IsPathTraversal: true,
			Message:         "identifier does not name a file in the base directory",
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if doc, ok := l.cache[id]; ok {
		l.logger.Debug("document cache hit", "id", id)
		return doc, nil
	}
	if len(l.cache) >= l.maxCached {
		return nil, &schemaerrors.ResourceLimitError{
			ResourceType: "cached_documents",
			Limit:        int64(l.maxCached),
			Actual:       int64(len(l.cache)),
			Message:      "too many external documents",
		}
	}

	path := l.displayPath(name)
	data, err := l.read(name, path)
	if err != nil {
		var loadErr *schemaerrors.LoadError
		if errors.As(err, &loadErr) {
			loadErr.ID = id
		}
		return nil, err
	}
	l.reads++

	doc, err := document.Parse(data, path)
	if err != nil {
		return nil, err
	}
	l.cache[id] = doc
	l.logger.Debug("document loaded", "id", id, "path", path, "bytes", len(data))
	return doc, nil
}

func (l *FSLoader) read(name, path string) ([]byte, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, &schemaerrors.LoadError{Path: path, Cause: err}
	}
	defer func() { _ = f.Close() }()

	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			return nil, &schemaerrors.LoadError{Path: path, Cause: errors.New("is a directory")}
		}
		if info.Size() > l.maxFileSize {
			return nil, fileTooLarge(path, l.maxFileSize, info.Size())
		}
	}
	return ReadAll(f, path, l.maxFileSize)
}

func (l *FSLoader) displayPath(name string) string {
	if l.baseDir == "" {
		return name
	}
	return filepath.Join(l.baseDir, filepath.FromSlash(name))
}

// ReadAll reads r to the end, failing once more than maxSize bytes have
// been read. name labels errors.
func ReadAll(r io.Reader, name string, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, &schemaerrors.LoadError{Path: name, Cause: err}
	}
	if int64(len(data)) > maxSize {
		return nil, fileTooLarge(name, maxSize, 0)
	}
	return data, nil
}

func fileTooLarge(name string, limit, actual int64) error {
	return &schemaerrors.ResourceLimitError{
		ResourceType: "file_size",
		Limit:        limit,
		Actual:       actual,
		Message:      fmt.Sprintf("%s exceeds maximum size", name),
	}
}
