// Package store defines the triple store abstraction used by the generator
// and the scoped transaction helpers around it.
package store

import (
	"context"
	"errors"
	"fmt"

	rgerrors "github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
)

// ErrReadOnly is returned by Insert on a read transaction.
var ErrReadOnly = errors.New("store: transaction is read-only")

// ErrTxDone is returned when a transaction is used after Commit or Rollback.
var ErrTxDone = errors.New("store: transaction already finished")

// Store is a handle on a triple store.
type Store interface {
	// Begin starts a transaction. Read transactions see a consistent
	// snapshot for their whole lifetime.
	Begin(ctx context.Context, writable bool) (Tx, error)
	Close() error
}

// Tx is a store transaction. A Tx is not safe for concurrent use.
type Tx interface {
	// Select runs q and calls fn for every solution in result order.
	// Iteration stops at the first error returned by fn.
	Select(ctx context.Context, q query.Select, fn func(query.Solution) error) error
	// Insert adds triples. Existing triples are ignored.
	Insert(ctx context.Context, triples []rdf.Triple) error
	Commit() error
	Rollback() error
}

// View runs fn inside a read transaction that is always rolled back when fn
// returns or panics. A failure to begin is reported as a query error.
func View(ctx context.Context, s Store, fn func(Tx) error) (err error) {
	tx, err := s.Begin(ctx, false)
	if err != nil {
		return rgerrors.NewQuery("", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, ErrTxDone) && err == nil {
			err = fmt.Errorf("end read transaction: %w", rbErr)
		}
	}()
	return fn(tx)
}

// Update runs fn inside a write transaction, committing when fn succeeds and
// rolling back otherwise.
func Update(ctx context.Context, s Store, fn func(Tx) error) (err error) {
	tx, err := s.Begin(ctx, true)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return tx.Commit()
}

// Collect runs q in its own read transaction and returns all solutions.
// It is meant for small result sets such as a single label lookup.
func Collect(ctx context.Context, s Store, q query.Select) ([]query.Solution, error) {
	var out []query.Solution
	err := View(ctx, s, func(tx Tx) error {
		return tx.Select(ctx, q, func(sol query.Solution) error {
			out = append(out, sol)
			return nil
		})
	})
	return out, err
}

// First returns the binding of name in the first solution of q, or nil when
// q has no solutions.
func First(ctx context.Context, s Store, q query.Select, name string) (rdf.Term, error) {
	var term rdf.Term
	err := View(ctx, s, func(tx Tx) error {
		return tx.Select(ctx, q.Page(1, q.Offset), func(sol query.Solution) error {
			if term == nil {
				term = sol.Get(name)
			}
			return nil
		})
	})
	return term, err
}
