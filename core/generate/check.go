package generate

import (
	"context"

	"github.com/openbel/reggie/core/concept"
	"github.com/openbel/reggie/core/cursor"
	"github.com/openbel/reggie/core/emit"
	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/internal/validation"
)

// Report lists the scheme slugs that have no usable template.
type Report struct {
	Namespaces  []string
	Annotations []string
}

// OK reports whether every scheme has a template.
func (r Report) OK() bool {
	return len(r.Namespaces) == 0 && len(r.Annotations) == 0
}

// Check verifies that every namespace scheme has at least one of its two
// namespace templates and every annotation scheme has its annotation
// template. Missing templates are logged and reported, not returned as an
// error.
func (g *Generator) Check(ctx context.Context) (Report, error) {
	var r Report

	err := g.eachSlug(ctx, rdf.BELVNamespaceConceptScheme, func(slug string) error {
		var found []emit.Mode
		for _, m := range []emit.Mode{emit.ByName, emit.ByIdentifier} {
			_, err := emit.FindTemplate(g.cfg.TemplateDir, slug, concept.Namespace, m)
			if errors.Is(err, errors.ErrNotFound) {
				g.log.Debug("missing template", "namespace", slug, "template", emit.TemplateName(slug, concept.Namespace, m))
				continue
			}
			if err != nil {
				return err
			}
			found = append(found, m)
		}
		if len(found) == 0 {
			g.log.Warn("missing templates for namespace", "namespace", slug)
			r.Namespaces = append(r.Namespaces, slug)
		}
		return nil
	})
	if err != nil {
		return r, err
	}

	err = g.eachSlug(ctx, rdf.BELVAnnotationConceptScheme, func(slug string) error {
		_, err := emit.FindTemplate(g.cfg.TemplateDir, slug, concept.Annotation, emit.ByName)
		if errors.Is(err, errors.ErrNotFound) {
			g.log.Warn("missing template for annotation", "annotation", slug,
				"template", emit.TemplateName(slug, concept.Annotation, emit.ByName))
			r.Annotations = append(r.Annotations, slug)
			return nil
		}
		return err
	})
	if err != nil {
		return r, err
	}

	if r.OK() {
		g.log.Info("templates exist for all resources")
	} else {
		g.log.Warn("missing templates reported",
			"namespaces", len(r.Namespaces), "annotations", len(r.Annotations))
	}
	return r, nil
}

// NamespaceSlugs returns the slug of every labelled namespace scheme in
// result order.
func (g *Generator) NamespaceSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	err := g.eachSlug(ctx, rdf.BELVNamespaceConceptScheme, func(slug string) error {
		slugs = append(slugs, slug)
		return nil
	})
	g.log.Info("namespaces found", "count", len(slugs))
	return slugs, err
}

// eachSlug calls fn with the slug of every labelled scheme of typeIRI.
// Labels that do not make a valid slug are logged and skipped.
func (g *Generator) eachSlug(ctx context.Context, typeIRI string, fn func(slug string) error) error {
	c, err := cursor.Open(ctx, g.st, query.SchemeLabels(typeIRI), g.cursorOptions())
	if err != nil {
		return errors.Wrap(err, "scheme labels")
	}
	defer c.Close()

	for c.Next() {
		label := c.Solution().Get(query.VarLabel)
		if !rdf.IsLiteral(label) {
			continue
		}
		slug, err := validation.Slug(rdf.Value(label))
		if err != nil {
			g.log.Warn("unusable scheme label", "label", rdf.Value(label), "error", err.Error())
			continue
		}
		if err := fn(slug); err != nil {
			return err
		}
	}
	return c.Err()
}
