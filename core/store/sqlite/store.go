// Package sqlite implements the triple store on an embedded SQLite database.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
//
// Every triple is one row of the triples table. Typed queries compile to a
// self-join with one table alias per pattern, with all values bound as
// parameters.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/core/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS triples (
	seq     INTEGER PRIMARY KEY AUTOINCREMENT,
	s       TEXT    NOT NULL,
	s_kind  INTEGER NOT NULL,
	p       TEXT    NOT NULL,
	o       TEXT    NOT NULL,
	o_kind  INTEGER NOT NULL,
	o_dt    TEXT    NOT NULL DEFAULT '',
	o_lang  TEXT    NOT NULL DEFAULT '',
	UNIQUE (s, s_kind, p, o, o_kind, o_dt, o_lang)
);
CREATE INDEX IF NOT EXISTS triples_p_o ON triples (p, o);
CREATE INDEX IF NOT EXISTS triples_s_p ON triples (s, p);
`

const insertTriple = `INSERT OR IGNORE INTO triples (s, s_kind, p, o, o_kind, o_dt, o_lang) VALUES (?, ?, ?, ?, ?, ?, ?)`

// Store is a SQLite-backed triple store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the triple store at path. The path
// ":memory:" opens a private in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	// One connection: SQLite serializes writers anyway and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.NewIO("initialize", path, err)
	}
	return &Store{db: db}, nil
}

// Begin starts a transaction. Read transactions are opened with
// sql.TxOptions.ReadOnly.
func (s *Store) Begin(ctx context.Context, writable bool) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: !writable})
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	return &Tx{tx: tx, writable: writable}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Count returns the number of stored triples.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM triples`).Scan(&n)
	return n, err
}

// Tx is a SQLite transaction.
type Tx struct {
	tx       *sql.Tx
	writable bool
}

// Select runs q and calls fn for every solution in insertion order of the
// matched rows.
func (t *Tx) Select(ctx context.Context, q query.Select, fn func(query.Solution) error) error {
	if err := q.Validate(); err != nil {
		return err
	}
	c := compile(q)

	rows, err := t.tx.QueryContext(ctx, c.sql, c.args...)
	if err != nil {
		return errors.NewQuery(q.SPARQL(), mapTxErr(err))
	}
	defer rows.Close()

	vals := make([]string, len(c.vars))
	kinds := make([]int, len(c.vars))
	dts := make([]string, len(c.vars))
	langs := make([]string, len(c.vars))
	dest := make([]any, 0, 4*len(c.vars))
	for i := range c.vars {
		dest = append(dest, &vals[i], &kinds[i], &dts[i], &langs[i])
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return errors.NewQuery(q.SPARQL(), err)
		}
		sol := make(query.Solution, len(c.vars))
		for i, v := range c.vars {
			sol[v] = rdf.FromColumns(vals[i], rdf.Kind(kinds[i]), dts[i], langs[i])
		}
		if err := fn(sol); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errors.NewQuery(q.SPARQL(), err)
	}
	return nil
}

// Insert adds triples, ignoring ones already stored.
func (t *Tx) Insert(ctx context.Context, triples []rdf.Triple) error {
	if !t.writable {
		return store.ErrReadOnly
	}
	stmt, err := t.tx.PrepareContext(ctx, insertTriple)
	if err != nil {
		return errors.Wrap(mapTxErr(err), "prepare insert")
	}
	defer stmt.Close()

	for _, tr := range triples {
		if tr.Subject == nil || tr.Predicate == nil || tr.Object == nil {
			return errors.NewValidation("triple", "missing term")
		}
		if rdf.IsLiteral(tr.Subject) || !rdf.IsIRI(tr.Predicate) {
			return errors.NewValidation("triple", "invalid term kind in "+rdf.FormatTriple(tr))
		}
		s, sk, _, _ := rdf.Columns(tr.Subject)
		o, ok, odt, olang := rdf.Columns(tr.Object)
		if _, err := stmt.ExecContext(ctx, s, int(sk), rdf.Value(tr.Predicate), o, int(ok), odt, olang); err != nil {
			return errors.Wrap(err, "insert triple")
		}
	}
	return nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return mapTxErr(t.tx.Commit())
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	return mapTxErr(t.tx.Rollback())
}

func mapTxErr(err error) error {
	if stderrors.Is(err, sql.ErrTxDone) {
		return store.ErrTxDone
	}
	return err
}
