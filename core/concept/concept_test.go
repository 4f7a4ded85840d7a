package concept

import (
	"testing"

	"github.com/openbel/reggie/core/rdf"
)

func pair(pred string, obj rdf.Term) rdf.Pair {
	return rdf.Pair{Predicate: rdf.IRI(pred), Object: obj}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		pairs   []rdf.Pair
		want    map[Field]string
	}{
		{
			name:    "namespace with protein type",
			variant: Namespace,
			pairs: []rdf.Pair{
				pair(rdf.SKOSPrefLabel, rdf.Literal("AKT1")),
				pair(rdf.DCTermsIdentifier, rdf.Literal("391")),
				pair(rdf.RDFType, rdf.IRI(rdf.BELVProteinConcept)),
				pair(rdf.RDFType, rdf.IRI(rdf.BELVGeneConcept)),
				pair(rdf.RDFType, rdf.IRI(rdf.BELVRNAConcept)),
			},
			want: map[Field]string{PreferredLabel: "AKT1", Identifier: "391", Encoding: "GPR"},
		},
		{
			name:    "namespace with unknown type only",
			variant: Namespace,
			pairs: []rdf.Pair{
				pair(rdf.SKOSPrefLabel, rdf.Literal("thing")),
				pair(rdf.RDFType, rdf.IRI(rdf.SKOS+"Concept")),
			},
			want: map[Field]string{PreferredLabel: "thing"},
		},
		{
			name:    "wrong object kinds are ignored",
			variant: Namespace,
			pairs: []rdf.Pair{
				pair(rdf.SKOSPrefLabel, rdf.IRI("http://example.org/label")),
				pair(rdf.DCTermsIdentifier, rdf.Blank("_:b0")),
				pair(rdf.RDFType, rdf.Literal(rdf.BELVProteinConcept)),
			},
			want: map[Field]string{},
		},
		{
			name:    "later label wins",
			variant: Annotation,
			pairs: []rdf.Pair{
				pair(rdf.SKOSPrefLabel, rdf.Literal("first")),
				pair(rdf.SKOSPrefLabel, rdf.Literal("second")),
				pair(rdf.DCTermsIdentifier, rdf.Literal("UBERON_0000955")),
			},
			want: map[Field]string{PreferredLabel: "second", Identifier: "UBERON_0000955"},
		},
		{
			name:    "annotation ignores type and scheme",
			variant: Annotation,
			pairs: []rdf.Pair{
				pair(rdf.RDFType, rdf.IRI(rdf.BELVProteinConcept)),
				pair(rdf.SKOSInScheme, rdf.IRI(rdf.UUIDSchemeBase+"abc")),
			},
			want: map[Field]string{},
		},
		{
			name:    "equivalence takes uuid scheme only",
			variant: Equivalence,
			pairs: []rdf.Pair{
				pair(rdf.SKOSInScheme, rdf.IRI("http://www.openbel.org/bel/namespace/hgnc")),
				pair(rdf.SKOSInScheme, rdf.IRI(rdf.UUIDSchemeBase+"1234-5678")),
				pair(rdf.SKOSPrefLabel, rdf.Literal("AKT1")),
				pair(rdf.RDFType, rdf.IRI(rdf.BELVProteinConcept)),
			},
			want: map[Field]string{PreferredLabel: "AKT1", UUID: "1234-5678"},
		},
		{
			name:    "non-IRI predicate skipped",
			variant: Equivalence,
			pairs: []rdf.Pair{
				{Predicate: rdf.Literal(rdf.SKOSPrefLabel), Object: rdf.Literal("x")},
			},
			want: map[Field]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Project(tt.variant, tt.pairs)
			if c.Variant != tt.variant {
				t.Errorf("Variant = %v, want %v", c.Variant, tt.variant)
			}
			for _, f := range []Field{Identifier, PreferredLabel, Encoding, UUID} {
				got, ok := c.Get(f)
				want, wantOK := tt.want[f]
				if ok != wantOK || got != want {
					t.Errorf("%v = %q (%v), want %q (%v)", f, got, ok, want, wantOK)
				}
			}
		})
	}
}

func TestProjectIsOrderIndependent(t *testing.T) {
	pairs := []rdf.Pair{
		pair(rdf.RDFType, rdf.IRI(rdf.BELVAbundanceConcept)),
		pair(rdf.RDFType, rdf.IRI(rdf.BELVComplexConcept)),
		pair(rdf.SKOSPrefLabel, rdf.Literal("x")),
	}
	reversed := []rdf.Pair{pairs[2], pairs[1], pairs[0]}

	a, _ := Project(Namespace, pairs).Get(Encoding)
	b, _ := Project(Namespace, reversed).Get(Encoding)
	if a != b || a != "C" {
		t.Errorf("encodings %q and %q, want C", a, b)
	}
}
