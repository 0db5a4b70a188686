package resolver

import (
	"github.com/figadore/json-schema-generator/schemaerrors"
)

// DefaultMaxDepth is the deepest chain of nested external documents a
// resolution pass will follow.
const DefaultMaxDepth = 100

type config struct {
	logger         Logger
	maxDepth       int
	rebaseSelfRefs bool
}

// Option configures a Resolver.
type Option func(*config) error

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		logger:   NopLogger{},
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithLogger sets the logger for classification and inlining events.
// A nil logger leaves the default NopLogger in place.
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithMaxDepth limits how many external documents may be nested inside
// one another. Exceeding it fails the pass with a ResourceLimitError.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) error {
		if depth <= 0 {
			return &schemaerrors.ConfigError{Option: "max depth", Value: depth, Message: "must be positive"}
		}
		cfg.maxDepth = depth
		return nil
	}
}

// WithRebaseSelfRefs rewrites self references ("#/...") inside inlined
// documents so they point at the document's new location under
// definitions. By default they are left unchanged and keep pointing at
// the compiled document's root.
//
// It also affects references that name their own document by id, such as
// "car#/properties/make" inside car. By default those become
// "#/definitions/car/properties/make" even in the top-level document,
// where no such definition exists; rebased, they become "#/properties/make".
func WithRebaseSelfRefs(enabled bool) Option {
	return func(cfg *config) error {
		cfg.rebaseSelfRefs = enabled
		return nil
	}
}
