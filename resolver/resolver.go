package resolver

import (
	"errors"

	"go.yaml.in/yaml/v4"

	"github.com/figadore/json-schema-generator/document"
	"github.com/figadore/json-schema-generator/loader"
	"github.com/figadore/json-schema-generator/reference"
	"github.com/figadore/json-schema-generator/schemaerrors"
	"github.com/figadore/json-schema-generator/walker"
)

// Stats counts what a resolution pass did. Counts cover the whole pass,
// including every nested resolver.
type Stats struct {
	// Markers is the number of "$ref" leaves visited.
	Markers int
	// Self is the number of markers that pointed into their own document.
	Self int
	// Rewritten is the number of markers rewritten to compiled locations.
	Rewritten int
	// Documents is the number of distinct documents inlined into definitions.
	Documents int
	// Resolvers is the number of resolvers run, including the top level.
	Resolvers int
}

// session is the state shared by every resolver of one pass.
type session struct {
	compiled *document.Document
	loader   loader.Loader
	cfg      *config

	// inProgress holds the identifiers on the current resolution stack.
	inProgress map[string]bool
	// inlined holds the identifiers this pass has written to definitions.
	inlined map[string]bool
	stats   Stats
}

// Resolver compiles the references of one document. A Resolver is
// single-use: Resolve mutates its working copy.
type Resolver struct {
	source  *document.Document
	working *document.Document
	id      string

	// location is where the working copy ends up in the compiled output:
	// "#" for the top level, "#/definitions/<id>" for inlined documents.
	location string
	// registry maps identifiers to their location in the compiled output.
	// It is never shared with parents or children.
	registry map[string]string

	session *session
	logger  Logger
	depth   int
	used    bool
}

// New returns a Resolver for source.
//
// If compiled is nil the resolver is the top level: its working copy
// becomes the compiled document that collects definitions. Otherwise
// inlined documents are written into compiled. Referenced documents are
// read through l.
func New(source *document.Document, compiled *document.Document, l loader.Loader, opts ...Option) (*Resolver, error) {
	if source == nil || source.Root() == nil {
		return nil, &schemaerrors.ConfigError{Option: "source", Message: "source document is nil"}
	}
	if l == nil {
		return nil, &schemaerrors.ConfigError{Option: "loader", Message: "loader is nil"}
	}
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, err
	}

	working := source.Clone()
	location := reference.SelfObject
	if compiled == nil {
		compiled = working
	} else if source.ID() != "" {
		location = reference.DefinitionRef(source.ID())
	}

	s := &session{
		compiled:   compiled,
		loader:     l,
		cfg:        cfg,
		inProgress: make(map[string]bool),
		inlined:    make(map[string]bool),
	}
	return newResolver(source, working, source.ID(), location, s, 0), nil
}

func newResolver(source, working *document.Document, id, location string, s *session, depth int) *Resolver {
	r := &Resolver{
		source:   source,
		working:  working,
		id:       id,
		location: location,
		registry: make(map[string]string),
		session:  s,
		depth:    depth,
		logger:   s.cfg.logger,
	}
	if id != "" {
		r.registry[id] = reference.SelfObject
		r.logger = r.logger.With("document", id)
	}
	return r
}

// Source returns the document the resolver was built from. It is never
// mutated.
func (r *Resolver) Source() *document.Document {
	return r.source
}

// Compiled returns the document that collects inlined definitions.
func (r *Resolver) Compiled() *document.Document {
	return r.session.compiled
}

// Stats returns the counts of the pass so far.
func (r *Resolver) Stats() Stats {
	return r.session.stats
}

// Resolve walks the working copy and compiles every "$ref" marker,
// loading and inlining referenced documents as it goes. It returns the
// fully resolved working copy. The first error aborts the pass.
//
// Resolve may be called once.
func (r *Resolver) Resolve() (*document.Document, error) {
	if r.used {
		return nil, &schemaerrors.ConfigError{Option: "resolver", Message: "Resolve called more than once"}
	}
	r.used = true
	r.session.stats.Resolvers++

	if r.id != "" {
		r.session.inProgress[r.id] = true
		defer delete(r.session.inProgress, r.id)
	}

	var walkErr error
	walker.Walk(r.working.Root(), func(path walker.Path, key walker.Segment, leaf *yaml.Node) walker.Action {
		if key.IsIndex() || key.Key != reference.Key {
			return walker.Continue
		}
		if r.inlinedDefinition(path) {
			return walker.Continue
		}
		if err := r.compile(path, leaf); err != nil {
			walkErr = err
			return walker.Stop
		}
		return walker.Continue
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return r.working, nil
}

// inlinedDefinition reports whether path lies inside a definitions entry
// this pass wrote into the document being walked. Those entries were
// resolved by their own resolver.
func (r *Resolver) inlinedDefinition(path walker.Path) bool {
	if r.working != r.session.compiled || len(path) < 2 {
		return false
	}
	table, entry := path[0], path[1]
	return !table.IsIndex() && table.Key == reference.DefinitionsKey &&
		!entry.IsIndex() && r.session.inlined[entry.Key]
}

// compile classifies the marker leaf found in the mapping at path and
// rewrites it in place when it names another document.
func (r *Resolver) compile(path walker.Path, leaf *yaml.Node) error {
	r.session.stats.Markers++
	pointer := path.Child(walker.KeySegment(reference.Key)).Pointer()

	if leaf.ShortTag() != "!!str" {
		return r.refError(&schemaerrors.ReferenceError{
			Ref:      leaf.Value,
			IsSyntax: true,
			Message:  "reference must be a string",
		}, pointer)
	}
	ref, err := reference.Parse(leaf.Value)
	if err != nil {
		return r.refError(err, pointer)
	}

	switch {
	case ref.IsSelf():
		r.session.stats.Self++
		if r.session.cfg.rebaseSelfRefs && r.location != reference.SelfObject {
			r.rewrite(leaf, ref, r.location, pointer)
			return nil
		}
		r.logger.Debug("self reference", "ref", ref.Original, "at", pointer)
		return nil

	case r.registry[ref.Object] != "":
		r.rewrite(leaf, ref, r.resolvedLocation(ref.Object), pointer)
		return nil
	}

	if err := r.inline(ref, pointer); err != nil {
		return err
	}
	r.rewrite(leaf, ref, r.resolvedLocation(ref.Object), pointer)
	return nil
}

// inline loads the document ref names, resolves it with a child resolver
// and writes the result into the compiled document's definitions.
func (r *Resolver) inline(ref reference.Reference, pointer string) error {
	id := ref.Object
	s := r.session

	if s.inProgress[id] {
		return &schemaerrors.ReferenceError{
			Ref:        ref.Original,
			Path:       pointer,
			Source:     r.source.Source(),
			IsCircular: true,
			Message:    "document " + id + " is already being resolved",
		}
	}
	if r.depth+1 > s.cfg.maxDepth {
		return &schemaerrors.ResourceLimitError{
			ResourceType: "ref_depth",
			Limit:        int64(s.cfg.maxDepth),
			Actual:       int64(r.depth + 1),
			Message:      "too many nested documents at " + ref.Original,
		}
	}

	loaded, err := s.loader.Load(id)
	if err != nil {
		return r.refError(&schemaerrors.ReferenceError{
			Ref:     ref.Original,
			Message: "cannot load referenced document",
			Cause:   err,
		}, pointer)
	}
	if declared := loaded.ID(); declared != "" && declared != id {
		return r.refError(&schemaerrors.ReferenceError{
			Ref:        ref.Original,
			IsMismatch: true,
			Message:    loaded.Source() + " declares id " + declared,
		}, pointer)
	}

	r.logger.Debug("resolving referenced document", "id", id, "source", loaded.Source(), "depth", r.depth+1)
	child := newResolver(loaded, loaded.Clone(), id, reference.DefinitionRef(id), s, r.depth+1)
	resolved, err := child.Resolve()
	if err != nil {
		return err
	}

	replaced, err := s.compiled.SetDefinition(id, resolved.Root())
	if err != nil {
		return r.refError(&schemaerrors.ReferenceError{
			Ref:     ref.Original,
			Message: "cannot inline referenced document",
			Cause:   err,
		}, pointer)
	}
	switch {
	case !s.inlined[id]:
		if replaced {
			s.cfg.logger.Warn("replacing existing definition with referenced document", "id", id, "source", loaded.Source())
		}
		s.inlined[id] = true
		s.stats.Documents++
	default:
		r.logger.Debug("definition re-resolved", "id", id)
	}
	r.registry[id] = reference.DefinitionRef(id)
	return nil
}

// resolvedLocation returns the location a marker naming id is rewritten
// to. A reference to the resolver's own id is rewritten like any other
// registered id, to "#/definitions/<id>"; with self-reference rebasing it
// follows the document to wherever it ends up instead.
func (r *Resolver) resolvedLocation(id string) string {
	loc := r.registry[id]
	if loc != reference.SelfObject {
		return loc
	}
	if r.session.cfg.rebaseSelfRefs {
		return r.location
	}
	return reference.DefinitionRef(id)
}

func (r *Resolver) rewrite(leaf *yaml.Node, ref reference.Reference, location, pointer string) {
	value := ref.Rebase(location)
	r.logger.Debug("reference rewritten", "ref", ref.Original, "to", value, "at", pointer)
	leaf.Value = value
	r.session.stats.Rewritten++
}

// refError fills in where a ReferenceError occurred.
func (r *Resolver) refError(err error, pointer string) error {
	var refErr *schemaerrors.ReferenceError
	if !errors.As(err, &refErr) {
		return err
	}
	if refErr.Path == "" {
		refErr.Path = pointer
	}
	if refErr.Source == "" {
		refErr.Source = r.source.Source()
	}
	return err
}
