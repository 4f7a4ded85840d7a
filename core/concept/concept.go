// Package concept projects the (predicate, object) pairs of one RDF subject
// onto a flat Concept record.
package concept

import (
	"fmt"

	"github.com/openbel/reggie/core/rdf"
)

// Variant selects which projection rules apply.
type Variant int

const (
	Namespace Variant = iota
	Annotation
	Equivalence
)

func (v Variant) String() string {
	switch v {
	case Namespace:
		return "namespace"
	case Annotation:
		return "annotation"
	case Equivalence:
		return "equivalence"
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// Field names one projected value.
type Field int

const (
	Identifier Field = iota
	PreferredLabel
	Encoding
	UUID
)

func (f Field) String() string {
	switch f {
	case Identifier:
		return "identifier"
	case PreferredLabel:
		return "preferredLabel"
	case Encoding:
		return "encoding"
	case UUID:
		return "uuid"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Concept is the projection of one subject.
type Concept struct {
	Variant Variant
	fields  map[Field]string
}

// New returns an empty concept of variant v.
func New(v Variant) Concept {
	return Concept{Variant: v, fields: map[Field]string{}}
}

// Get returns the value of f and whether it is present.
func (c Concept) Get(f Field) (string, bool) {
	v, ok := c.fields[f]
	return v, ok
}

// Set assigns f.
func (c *Concept) Set(f Field, v string) {
	if c.fields == nil {
		c.fields = map[Field]string{}
	}
	c.fields[f] = v
}

func (c Concept) String() string {
	return fmt.Sprintf("%s%v", c.Variant, c.fields)
}

// rule maps one predicate onto a field for some variants. Objects of the
// wrong kind are ignored.
type rule struct {
	predicate string
	kind      rdf.Kind
	variants  []Variant
	apply     func(acc *accumulator, value string)
}

var allVariants = []Variant{Namespace, Annotation, Equivalence}

var rules = []rule{
	{
		predicate: rdf.DCTermsIdentifier,
		kind:      rdf.KindLiteral,
		variants:  allVariants,
		apply:     func(acc *accumulator, v string) { acc.c.Set(Identifier, v) },
	},
	{
		predicate: rdf.SKOSPrefLabel,
		kind:      rdf.KindLiteral,
		variants:  allVariants,
		apply:     func(acc *accumulator, v string) { acc.c.Set(PreferredLabel, v) },
	},
	{
		predicate: rdf.RDFType,
		kind:      rdf.KindIRI,
		variants:  []Variant{Namespace},
		apply:     func(acc *accumulator, v string) { acc.types = append(acc.types, v) },
	},
	{
		predicate: rdf.SKOSInScheme,
		kind:      rdf.KindIRI,
		variants:  []Variant{Equivalence},
		apply: func(acc *accumulator, v string) {
			if id, ok := UUIDFromScheme(v); ok {
				acc.c.Set(UUID, id)
			}
		},
	},
}

type accumulator struct {
	c     Concept
	types []string
}

func (r rule) appliesTo(v Variant) bool {
	for _, rv := range r.variants {
		if rv == v {
			return true
		}
	}
	return false
}

// Project builds one concept of variant v from the pairs of a single
// subject. Pair order does not matter except that a later identifier or
// label replaces an earlier one.
func Project(v Variant, pairs []rdf.Pair) Concept {
	acc := accumulator{c: New(v)}
	for _, p := range pairs {
		if !rdf.IsIRI(p.Predicate) || p.Object == nil {
			continue
		}
		pred := rdf.Value(p.Predicate)
		for _, r := range rules {
			if r.predicate != pred || !r.appliesTo(v) || rdf.KindOf(p.Object) != r.kind {
				continue
			}
			r.apply(&acc, rdf.Value(p.Object))
		}
	}
	if v == Namespace {
		if enc := EncodingOf(acc.types); enc != "" {
			acc.c.Set(Encoding, enc)
		}
	}
	return acc.c
}
