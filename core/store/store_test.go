package store

import (
	"context"
	"errors"
	"testing"

	rgerrors "github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
)

type fakeStore struct {
	begun     []bool
	rollbacks int
	commits   int
	rows      []query.Solution
}

type fakeTx struct {
	s        *fakeStore
	writable bool
	done     bool
}

func (s *fakeStore) Begin(_ context.Context, writable bool) (Tx, error) {
	s.begun = append(s.begun, writable)
	return &fakeTx{s: s, writable: writable}, nil
}

func (s *fakeStore) Close() error { return nil }

func (t *fakeTx) Select(_ context.Context, q query.Select, fn func(query.Solution) error) error {
	for i, row := range t.s.rows {
		if q.Limit > 0 && i >= q.Limit {
			break
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (t *fakeTx) Insert(context.Context, []rdf.Triple) error {
	if !t.writable {
		return ErrReadOnly
	}
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.s.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return ErrTxDone
	}
	t.done = true
	t.s.rollbacks++
	return nil
}

func TestViewAlwaysRollsBack(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		fn      func(Tx) error
		wantErr error
		panics  bool
	}{
		{name: "success", fn: func(Tx) error { return nil }},
		{name: "error", fn: func(Tx) error { return boom }, wantErr: boom},
		{name: "panic", fn: func(Tx) error { panic("fetch") }, panics: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeStore{}
			func() {
				defer func() {
					if r := recover(); (r != nil) != tt.panics {
						t.Errorf("recover() = %v, panics %v", r, tt.panics)
					}
				}()
				err := View(context.Background(), s, tt.fn)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("View() error = %v, want %v", err, tt.wantErr)
				}
			}()
			if len(s.begun) != 1 || s.begun[0] {
				t.Errorf("begun = %v, want one read transaction", s.begun)
			}
			if s.rollbacks != 1 || s.commits != 0 {
				t.Errorf("rollbacks = %d commits = %d, want 1 and 0", s.rollbacks, s.commits)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	s := &fakeStore{}
	if err := Update(context.Background(), s, func(tx Tx) error {
		return tx.Insert(context.Background(), nil)
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if s.commits != 1 || s.rollbacks != 0 || !s.begun[0] {
		t.Errorf("commits = %d rollbacks = %d begun = %v", s.commits, s.rollbacks, s.begun)
	}

	s = &fakeStore{}
	boom := errors.New("boom")
	if err := Update(context.Background(), s, func(Tx) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}
	if s.commits != 0 || s.rollbacks != 1 {
		t.Errorf("commits = %d rollbacks = %d after failure", s.commits, s.rollbacks)
	}
}

func TestViewInsertIsReadOnly(t *testing.T) {
	err := View(context.Background(), &fakeStore{}, func(tx Tx) error {
		return tx.Insert(context.Background(), nil)
	})
	if !errors.Is(err, ErrReadOnly) {
		t.Errorf("error = %v, want ErrReadOnly", err)
	}
}

func TestCollectAndFirst(t *testing.T) {
	s := &fakeStore{rows: []query.Solution{
		{"label": rdf.Literal("first")},
		{"label": rdf.Literal("second")},
	}}
	q := query.PreferredLabel(rdf.IRI("http://example.org/c"))

	sols, err := Collect(context.Background(), s, q)
	if err != nil || len(sols) != 2 {
		t.Fatalf("Collect() = %d solutions, %v", len(sols), err)
	}

	label, err := First(context.Background(), s, q, "label")
	if err != nil {
		t.Fatal(err)
	}
	if rdf.Value(label) != "first" {
		t.Errorf("First() = %v, want first", label)
	}

	empty := &fakeStore{}
	if label, err := First(context.Background(), empty, q, "label"); err != nil || label != nil {
		t.Errorf("First() on empty store = %v, %v", label, err)
	}
}

type brokenStore struct{ err error }

func (s brokenStore) Begin(context.Context, bool) (Tx, error) { return nil, s.err }
func (s brokenStore) Close() error                            { return nil }

func TestViewBeginFailureIsQueryError(t *testing.T) {
	boom := errors.New("database is locked")
	err := View(context.Background(), brokenStore{boom}, func(Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	if !errors.Is(err, rgerrors.ErrQuery) || !errors.Is(err, boom) {
		t.Errorf("View() error = %v, want query error wrapping %v", err, boom)
	}
}
