// Package generate runs the resource pipelines: it walks the concept
// schemes of the store, projects every value of a scheme and feeds the
// result to the scheme's resource emitters.
package generate

import (
	"context"
	"log/slog"

	"github.com/openbel/reggie/core/concept"
	"github.com/openbel/reggie/core/cursor"
	"github.com/openbel/reggie/core/emit"
	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/core/store"
	"github.com/openbel/reggie/internal/logging"
	"github.com/openbel/reggie/internal/metrics"
	"github.com/openbel/reggie/internal/validation"
)

// Config holds the directories and header values of a run.
type Config struct {
	TemplateDir     string
	NamespaceDir    string
	AnnotationDir   string
	EquivalenceDir  string
	Version         string
	CreatedDateTime string
	PageSize        int
}

// Options configures a Generator.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Generator runs the pipelines against one store. It is not safe for
// concurrent use.
type Generator struct {
	st      store.Store
	cfg     Config
	log     *slog.Logger
	rec     *metrics.Recorder
	written []string
}

// New returns a Generator over st.
func New(st store.Store, cfg Config, opts Options) *Generator {
	return &Generator{
		st:  st,
		cfg: cfg,
		log: logging.Component(opts.Logger, "generate"),
		rec: opts.Metrics,
	}
}

// Written returns the paths of every resource file written so far, in
// order.
func (g *Generator) Written() []string {
	return append([]string(nil), g.written...)
}

// pipeline describes one resource family.
type pipeline struct {
	variant concept.Variant
	schemes query.Select
	modes   []emit.Mode
	dir     func(Config) string
	withURI bool
}

var (
	namespaces = pipeline{
		variant: concept.Namespace,
		schemes: query.NamespaceSchemes(),
		modes:   []emit.Mode{emit.ByName, emit.ByIdentifier},
		dir:     func(c Config) string { return c.NamespaceDir },
	}
	annotations = pipeline{
		variant: concept.Annotation,
		schemes: query.AnnotationSchemes(),
		modes:   []emit.Mode{emit.ByName},
		dir:     func(c Config) string { return c.AnnotationDir },
		withURI: true,
	}
	equivalences = pipeline{
		variant: concept.Equivalence,
		schemes: query.NamespaceSchemes(),
		modes:   []emit.Mode{emit.ByName, emit.ByIdentifier},
		dir:     func(c Config) string { return c.EquivalenceDir },
	}
)

// Namespaces writes the .belns resources.
func (g *Generator) Namespaces(ctx context.Context) error {
	return g.run(ctx, namespaces)
}

// Annotations writes the .belanno resources.
func (g *Generator) Annotations(ctx context.Context) error {
	return g.run(ctx, annotations)
}

// Equivalences writes the .beleq resources.
func (g *Generator) Equivalences(ctx context.Context) error {
	return g.run(ctx, equivalences)
}

// All runs annotations, namespaces and equivalences in that order,
// stopping at the first failure.
func (g *Generator) All(ctx context.Context) error {
	for _, p := range []pipeline{annotations, namespaces, equivalences} {
		if err := g.run(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) cursorOptions() cursor.Options {
	return cursor.Options{
		PageSize: g.cfg.PageSize,
		Logger:   g.log,
		OnPage:   func(_, rows int) { g.rec.PageFetched(rows) },
	}
}

func (g *Generator) run(ctx context.Context, p pipeline) error {
	g.log.Info("pipeline started", "variant", p.variant.String())

	schemes, err := cursor.Open(ctx, g.st, p.schemes, g.cursorOptions())
	if err != nil {
		return errors.Wrapf(err, "%s schemes", p.variant)
	}
	defer schemes.Close()

	count := 0
	for schemes.Next() {
		scheme := schemes.Solution().Get(query.VarSubject)
		if err := g.runScheme(ctx, p, scheme); err != nil {
			return err
		}
		count++
	}
	if err := schemes.Err(); err != nil {
		return errors.Wrapf(err, "%s schemes", p.variant)
	}

	g.log.Info("pipeline finished", "variant", p.variant.String(), "schemes", count)
	return nil
}

func (g *Generator) runScheme(ctx context.Context, p pipeline, scheme rdf.Term) (err error) {
	schemeIRI := rdf.Value(scheme)
	log := g.log.With("variant", p.variant.String(), "scheme", schemeIRI)

	label, err := store.First(ctx, g.st, query.PreferredLabel(scheme), query.VarLabel)
	if err != nil {
		return errors.Wrapf(err, "label of %s", schemeIRI)
	}
	if !rdf.IsLiteral(label) {
		log.Warn("scheme has no preferred label, skipping")
		return nil
	}
	slug, err := validation.Slug(rdf.Value(label))
	if err != nil {
		log.Warn("scheme label is not usable as a file name, skipping", "label", rdf.Value(label), "error", err.Error())
		return nil
	}
	log = log.With("slug", slug)

	header := emit.Header{Version: g.cfg.Version, CreatedDateTime: g.cfg.CreatedDateTime}
	if p.withURI {
		header.ResourceURI = schemeIRI
	}

	var emitters []*emit.Emitter
	for _, m := range p.modes {
		tmpl, err := emit.FindTemplate(g.cfg.TemplateDir, slug, p.variant, m)
		if errors.Is(err, errors.ErrNotFound) {
			log.Debug("no template", "template", emit.TemplateName(slug, p.variant, m))
			continue
		}
		if err != nil {
			return err
		}
		emitters = append(emitters, emit.New(emit.Target{
			Variant:   p.variant,
			Mode:      m,
			Slug:      slug,
			Template:  tmpl,
			OutputDir: p.dir(g.cfg),
		}, header, emit.Options{Logger: g.log, Metrics: g.rec}))
	}
	if len(emitters) == 0 {
		log.Info("no templates for scheme, skipping")
		g.rec.TemplateMissing(p.variant.String())
		return nil
	}

	defer func() {
		var closeErrs []error
		for _, e := range emitters {
			if cerr := e.Close(); cerr != nil {
				closeErrs = append(closeErrs, cerr)
			} else if e.Opened() {
				g.written = append(g.written, e.Path())
			}
		}
		if err == nil {
			err = errors.Join(closeErrs...)
		}
	}()

	values, err := cursor.Open(ctx, g.st, query.ValuesInScheme(scheme), g.cursorOptions())
	if err != nil {
		return errors.Wrapf(err, "values of %s", schemeIRI)
	}
	defer values.Close()

	for values.Next() {
		value := values.Solution().Get(query.VarSubject)
		c := concept.New(p.variant)
		if rdf.IsIRI(value) {
			pairs, err := g.pairs(ctx, value)
			if err != nil {
				return errors.Wrapf(err, "pairs of %s", rdf.Value(value))
			}
			c = concept.Project(p.variant, pairs)
		} else {
			// Blank values cannot be addressed in a later query.
			log.Debug("value is not an IRI", "value", rdf.Format(value))
		}
		g.rec.ConceptProjected(p.variant.String())
		for _, e := range emitters {
			if err := e.Write(c); err != nil {
				return err
			}
		}
	}
	if err := values.Err(); err != nil {
		return errors.Wrapf(err, "values of %s", schemeIRI)
	}
	return nil
}

// pairs collects every (predicate, object) of subject.
func (g *Generator) pairs(ctx context.Context, subject rdf.Term) ([]rdf.Pair, error) {
	c, err := cursor.Open(ctx, g.st, query.ConceptPairs(subject), g.cursorOptions())
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var pairs []rdf.Pair
	for c.Next() {
		sol := c.Solution()
		pairs = append(pairs, rdf.Pair{
			Predicate: sol.Get(query.VarPredicate),
			Object:    sol.Get(query.VarObject),
		})
	}
	return pairs, c.Err()
}
