package concept

import (
	"sort"
	"strings"

	"github.com/openbel/reggie/core/rdf"
)

// typeCodes maps BEL concept classes to their encoding letters.
var typeCodes = map[string]byte{
	rdf.BELVAbundanceConcept:           'A',
	rdf.BELVBiologicalProcessConcept:   'B',
	rdf.BELVComplexConcept:             'C',
	rdf.BELVProteinModificationConcept: 'E',
	rdf.BELVGeneConcept:                'G',
	rdf.BELVMicroRNAConcept:            'M',
	rdf.BELVPathologyConcept:           'O',
	rdf.BELVProteinConcept:             'P',
	rdf.BELVRNAConcept:                 'R',
	rdf.BELVMolecularActivityConcept:   'T',
}

// TypeCode returns the encoding letter for a BEL concept class IRI.
func TypeCode(typeIRI string) (byte, bool) {
	c, ok := typeCodes[typeIRI]
	return c, ok
}

// EncodingOf derives the encoding string from a concept's rdf:type IRIs.
// Unrecognised types contribute nothing; the empty string means no
// encoding.
func EncodingOf(typeIRIs []string) string {
	var codes []byte
	for _, iri := range typeIRIs {
		if c, ok := TypeCode(iri); ok {
			codes = append(codes, c)
		}
	}
	return Reduce(string(codes))
}

// Reduce applies the subsumption rules to a set of encoding letters and
// returns them sorted:
//
//	B and O   -> drop B
//	R and M   -> drop R
//	A and any of C, G, M, P, R -> drop A
//
// The rules run in that order, so an R dropped by the second rule no longer
// counts for the third.
func Reduce(codes string) string {
	set := map[byte]bool{}
	for i := 0; i < len(codes); i++ {
		set[codes[i]] = true
	}
	if set['B'] && set['O'] {
		delete(set, 'B')
	}
	if set['R'] && set['M'] {
		delete(set, 'R')
	}
	if set['A'] && (set['C'] || set['G'] || set['M'] || set['P'] || set['R']) {
		delete(set, 'A')
	}

	out := make([]byte, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return string(out)
}

// UUIDFromScheme extracts the UUID from a UUID concept scheme IRI: when the
// IRI contains "uuid" its last non-empty '/'-separated segment is returned.
func UUIDFromScheme(schemeIRI string) (string, bool) {
	if !strings.Contains(schemeIRI, "uuid") {
		return "", false
	}
	trimmed := strings.TrimRight(schemeIRI, "/")
	if trimmed == "" {
		return "", false
	}
	return trimmed[strings.LastIndexByte(trimmed, '/')+1:], true
}
