package rdf

import (
	"io"
	"maps"
	"slices"

	"github.com/piprate/json-gold/ld"
)

const defaultGraph = "@default"

// Triple is a single statement. Graph names are not tracked.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Pair is the (predicate, object) half of a triple whose subject is implied
// by context.
type Pair struct {
	Predicate Term
	Object    Term
}

// NewTriple builds a triple.
func NewTriple(s, p, o Term) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// Quad converts t into a json-gold quad in the default graph.
func (t Triple) Quad() *ld.Quad {
	return ld.NewQuad(t.Subject, t.Predicate, t.Object, "")
}

// FromQuad drops the graph name of q.
func FromQuad(q *ld.Quad) Triple {
	return Triple{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object}
}

// Dataset collects triples into a json-gold dataset.
func Dataset(triples []Triple) *ld.RDFDataset {
	ds := ld.NewRDFDataset()
	quads := make([]*ld.Quad, 0, len(triples))
	for _, t := range triples {
		quads = append(quads, t.Quad())
	}
	ds.Graphs[defaultGraph] = quads
	return ds
}

// Triples flattens every graph of ds into triples. Named graphs are merged
// into the default graph in name order.
func Triples(ds *ld.RDFDataset) []Triple {
	var out []Triple
	for _, q := range ds.Graphs[defaultGraph] {
		out = append(out, FromQuad(q))
	}
	for _, name := range slices.Sorted(maps.Keys(ds.Graphs)) {
		if name == defaultGraph {
			continue
		}
		for _, q := range ds.Graphs[name] {
			out = append(out, FromQuad(q))
		}
	}
	return out
}

// WriteNTriples serializes triples as N-Triples (N-Quads without graph
// names) to w.
func WriteNTriples(w io.Writer, triples []Triple) error {
	if len(triples) == 0 {
		return nil
	}
	ser := &ld.NQuadRDFSerializer{}
	return ser.SerializeTo(w, Dataset(triples))
}
