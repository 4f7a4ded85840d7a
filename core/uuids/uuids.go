// Package uuids places every namespace value concept, together with its
// exact-match equivalents, in a freshly minted UUID concept scheme.
package uuids

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openbel/reggie/core/cursor"
	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/core/store"
	"github.com/openbel/reggie/internal/logging"
)

// DefaultBatchSize is the number of triples inserted per write transaction.
const DefaultBatchSize = 5000

// Options configures an Assigner.
type Options struct {
	Logger    *slog.Logger
	PageSize  int
	BatchSize int
	// Insert also adds the assignments to the store once every concept
	// has been visited.
	Insert bool
	// NewUUID mints scheme identifiers. Defaults to uuid.New.
	NewUUID func() uuid.UUID
}

// Result summarizes a run.
type Result struct {
	Schemes  int
	Concepts int
	Triples  int
}

// Assigner mints UUID schemes for namespace values.
type Assigner struct {
	st   store.Store
	opts Options
	log  *slog.Logger
}

// New returns an Assigner reading from st.
func New(st store.Store, opts Options) *Assigner {
	if opts.NewUUID == nil {
		opts.NewUUID = uuid.New
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Assigner{st: st, opts: opts, log: logging.Component(opts.Logger, "uuids")}
}

// Preamble declares the UUID concept scheme class.
func Preamble() []rdf.Triple {
	scheme := rdf.IRI(rdf.BELVUUIDConceptScheme)
	typ := rdf.IRI(rdf.RDFType)
	sub := rdf.IRI(rdf.RDFSSubClassOf)
	return []rdf.Triple{
		rdf.NewTriple(scheme, typ, rdf.IRI(rdf.RDFSClass)),
		rdf.NewTriple(scheme, typ, rdf.IRI(rdf.RDFSResource)),
		rdf.NewTriple(scheme, sub, scheme),
		rdf.NewTriple(scheme, sub, rdf.IRI(rdf.SKOSConceptScheme)),
	}
}

// SchemeIRI returns the UUID scheme IRI for id.
func SchemeIRI(id uuid.UUID) string {
	return rdf.UUIDSchemeBase + id.String()
}

// Assignment returns the triples placing members in the UUID scheme id.
func Assignment(id uuid.UUID, members []rdf.Term) []rdf.Triple {
	scheme := rdf.IRI(SchemeIRI(id))
	typ := rdf.IRI(rdf.RDFType)
	out := []rdf.Triple{
		rdf.NewTriple(scheme, typ, rdf.IRI(rdf.BELVUUIDConceptScheme)),
		rdf.NewTriple(scheme, typ, rdf.IRI(rdf.SKOSConceptScheme)),
	}
	for _, m := range members {
		out = append(out,
			rdf.NewTriple(m, rdf.IRI(rdf.SKOSInScheme), scheme),
			rdf.NewTriple(m, typ, rdf.IRI(rdf.BELVUUIDConcept)),
		)
	}
	return out
}

// Assign writes the preamble and one assignment per unassigned namespace
// value to w as N-Triples. A concept already placed in a scheme earlier in
// the run, directly or as an equivalent, is not given another one.
func (a *Assigner) Assign(ctx context.Context, w io.Writer) (Result, error) {
	var res Result
	a.log.Info("assigning uuids")

	var pending []rdf.Triple
	emit := func(triples []rdf.Triple) error {
		if err := rdf.WriteNTriples(w, triples); err != nil {
			return errors.NewIO("write", "", err)
		}
		res.Triples += len(triples)
		if a.opts.Insert {
			pending = append(pending, triples...)
		}
		return nil
	}

	if err := emit(Preamble()); err != nil {
		return res, err
	}

	values, err := cursor.Open(ctx, a.st, query.NamespaceValues(), a.cursorOptions())
	if err != nil {
		return res, errors.Wrap(err, "namespace values")
	}
	defer values.Close()

	assigned := make(map[string]bool)
	for values.Next() {
		subject := values.Solution().Get(query.VarSubject)
		if !rdf.IsIRI(subject) || assigned[rdf.Value(subject)] {
			continue
		}

		members := []rdf.Term{subject}
		assigned[rdf.Value(subject)] = true
		eqs, err := a.equivalents(ctx, subject)
		if err != nil {
			return res, errors.Wrapf(err, "equivalents of %s", rdf.Value(subject))
		}
		for _, eq := range eqs {
			if assigned[rdf.Value(eq)] {
				continue
			}
			assigned[rdf.Value(eq)] = true
			members = append(members, eq)
		}

		if err := emit(Assignment(a.opts.NewUUID(), members)); err != nil {
			return res, err
		}
		res.Schemes++
		res.Concepts += len(members)
	}
	if err := values.Err(); err != nil {
		return res, errors.Wrap(err, "namespace values")
	}

	if a.opts.Insert {
		if err := a.insert(ctx, pending); err != nil {
			return res, err
		}
	}

	a.log.Info("uuids assigned", "schemes", res.Schemes, "concepts", res.Concepts, "triples", res.Triples)
	return res, nil
}

func (a *Assigner) equivalents(ctx context.Context, concept rdf.Term) ([]rdf.Term, error) {
	c, err := cursor.Open(ctx, a.st, query.EquivalentConcepts(concept), a.cursorOptions())
	if err != nil {
		return nil, err
	}
	defer c.Close()

	var out []rdf.Term
	for c.Next() {
		if eq := c.Solution().Get(query.VarEquivalent); rdf.IsIRI(eq) {
			out = append(out, eq)
		}
	}
	return out, c.Err()
}

func (a *Assigner) insert(ctx context.Context, triples []rdf.Triple) error {
	for start := 0; start < len(triples); start += a.opts.BatchSize {
		batch := triples[start:min(start+a.opts.BatchSize, len(triples))]
		if err := store.Update(ctx, a.st, func(tx store.Tx) error {
			return tx.Insert(ctx, batch)
		}); err != nil {
			return errors.Wrap(err, "insert uuid assignments")
		}
	}
	return nil
}

func (a *Assigner) cursorOptions() cursor.Options {
	return cursor.Options{PageSize: a.opts.PageSize, Logger: a.log}
}
