package uuids

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/piprate/json-gold/ld"

	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/core/store"
	"github.com/openbel/reggie/core/store/sqlite"
	"github.com/openbel/reggie/internal/logging"
)

var fixedIDs = []uuid.UUID{
	uuid.MustParse("0b1c4d2e-0000-4000-8000-000000000001"),
	uuid.MustParse("0b1c4d2e-0000-4000-8000-000000000002"),
	uuid.MustParse("0b1c4d2e-0000-4000-8000-000000000003"),
}

func sequence(t *testing.T) func() uuid.UUID {
	i := 0
	return func() uuid.UUID {
		if i >= len(fixedIDs) {
			t.Fatal("too many uuids minted")
		}
		id := fixedIDs[i]
		i++
		return id
	}
}

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	ex := func(s string) rdf.Term { return rdf.IRI("http://example.org/" + s) }
	typ := rdf.IRI(rdf.RDFType)
	in := rdf.IRI(rdf.SKOSInScheme)
	match := rdf.IRI(rdf.SKOSExactMatch)
	ns := rdf.IRI(rdf.BELVNamespaceConceptScheme)

	triples := []rdf.Triple{
		rdf.NewTriple(ex("ns/hgnc"), typ, ns),
		rdf.NewTriple(ex("ns/entrez"), typ, ns),
		rdf.NewTriple(ex("hgnc/1"), in, ex("ns/hgnc")),
		rdf.NewTriple(ex("hgnc/1"), match, ex("entrez/1")),
		rdf.NewTriple(ex("hgnc/2"), in, ex("ns/hgnc")),
		rdf.NewTriple(ex("entrez/1"), in, ex("ns/entrez")),
	}
	if err := store.Update(ctx, st, func(tx store.Tx) error { return tx.Insert(ctx, triples) }); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestAssign(t *testing.T) {
	st := openStore(t)
	var buf bytes.Buffer

	a := New(st, Options{Logger: logging.Discard(), PageSize: 2, NewUUID: sequence(t)})
	res, err := a.Assign(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	if res.Schemes != 2 || res.Concepts != 3 {
		t.Errorf("Assign() = %+v, want 2 schemes and 3 concepts", res)
	}
	if res.Triples != 14 {
		t.Errorf("Triples = %d, want 14", res.Triples)
	}

	ds, err := ld.ParseNQuads(buf.String())
	if err != nil {
		t.Fatalf("output is not N-Triples: %v", err)
	}
	got := rdf.Triples(ds)
	if len(got) != res.Triples {
		t.Fatalf("parsed %d triples, want %d", len(got), res.Triples)
	}

	inScheme := map[string]string{}
	for _, tr := range got {
		if rdf.Value(tr.Predicate) == rdf.SKOSInScheme {
			inScheme[rdf.Value(tr.Subject)] = rdf.Value(tr.Object)
		}
	}
	first := SchemeIRI(fixedIDs[0])
	second := SchemeIRI(fixedIDs[1])
	want := map[string]string{
		"http://example.org/hgnc/1":   first,
		"http://example.org/entrez/1": first,
		"http://example.org/hgnc/2":   second,
	}
	for concept, scheme := range want {
		if inScheme[concept] != scheme {
			t.Errorf("%s in scheme %q, want %q", concept, inScheme[concept], scheme)
		}
	}

	n, err := st.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Errorf("store has %d triples without Insert, want 6", n)
	}
}

func TestAssignInsert(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	var buf bytes.Buffer

	a := New(st, Options{NewUUID: sequence(t), Insert: true, BatchSize: 3})
	res, err := a.Assign(ctx, &buf)
	if err != nil {
		t.Fatal(err)
	}

	rows, err := store.Collect(ctx, st, query.ValuesInScheme(rdf.IRI(SchemeIRI(fixedIDs[0]))))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("first uuid scheme has %d members, want 2", len(rows))
	}

	n, err := st.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 6+res.Triples {
		t.Errorf("store has %d triples, want %d", n, 6+res.Triples)
	}
}

func TestPreamble(t *testing.T) {
	p := Preamble()
	if len(p) != 4 {
		t.Fatalf("Preamble() has %d triples", len(p))
	}
	for _, tr := range p {
		if rdf.Value(tr.Subject) != rdf.BELVUUIDConceptScheme {
			t.Errorf("preamble subject = %s", rdf.Value(tr.Subject))
		}
	}
}

func TestSchemeIRI(t *testing.T) {
	got := SchemeIRI(fixedIDs[0])
	if got != "http://www.openbel.org/bel/uuid/0b1c4d2e-0000-4000-8000-000000000001" {
		t.Errorf("SchemeIRI() = %s", got)
	}
}
