// Package cursor pages through query results with one read transaction per
// page.
//
// A Cursor holds a fixed array of PageSize slots. Every slot is cleared
// before a fetch and the fetched rows fill the array from the start, so the
// first empty slot marks the end of the results. The offset advances by
// PageSize after every fetch whatever the number of rows returned; a result
// set whose size is an exact multiple of PageSize therefore costs one extra
// empty fetch.
package cursor

import (
	"context"
	"log/slog"

	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/store"
	"github.com/openbel/reggie/internal/logging"
)

// DefaultPageSize is the number of rows fetched per page.
const DefaultPageSize = 1000

// Options configures a Cursor.
type Options struct {
	// PageSize is the LIMIT of every page. Zero means DefaultPageSize.
	PageSize int
	Logger   *slog.Logger
	// OnPage, when set, is called after every successful fetch.
	OnPage func(offset, rows int)
}

// Cursor iterates over the solutions of a query, forward only.
//
//	c, err := cursor.Open(ctx, st, query.NamespaceSchemes(), cursor.Options{})
//	if err != nil { ... }
//	defer c.Close()
//	for c.Next() {
//		use(c.Solution())
//	}
//	if err := c.Err(); err != nil { ... }
type Cursor struct {
	ctx    context.Context
	st     store.Store
	q      query.Select
	limit  int
	offset int

	batch   []query.Solution
	pos     int
	current query.Solution
	fetches int
	done    bool
	err     error

	log    *slog.Logger
	onPage func(offset, rows int)
}

// Open validates q, creates a cursor at offset 0 and fetches the first page.
// q must not carry its own LIMIT or OFFSET.
func Open(ctx context.Context, st store.Store, q query.Select, opts Options) (*Cursor, error) {
	if q.Limit != 0 || q.Offset != 0 {
		return nil, errors.NewValidation("query", "paged queries must not set LIMIT or OFFSET")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	limit := opts.PageSize
	if limit <= 0 {
		limit = DefaultPageSize
	}

	c := &Cursor{
		ctx:    ctx,
		st:     st,
		q:      q,
		limit:  limit,
		batch:  make([]query.Solution, limit),
		log:    logging.Component(opts.Logger, "cursor"),
		onPage: opts.OnPage,
	}
	if err := c.fetch(); err != nil {
		return nil, err
	}
	return c, nil
}

// Next advances to the next solution. It returns false at the end of the
// results or after a fault, which Err then reports.
func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	if c.pos == c.limit {
		if err := c.fetch(); err != nil {
			return false
		}
	}
	sol := c.batch[c.pos]
	if sol == nil {
		c.done = true
		c.current = nil
		return false
	}
	c.current = sol
	c.pos++
	return true
}

// Solution returns the solution Next advanced to.
func (c *Cursor) Solution() query.Solution {
	return c.current
}

// Err returns the fault that stopped iteration, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Close ends iteration. No further fetches happen after Close.
func (c *Cursor) Close() error {
	c.done = true
	c.current = nil
	c.batch = nil
	return nil
}

// Offset returns the offset the next fetch would use.
func (c *Cursor) Offset() int { return c.offset }

// Fetches returns the number of pages fetched so far.
func (c *Cursor) Fetches() int { return c.fetches }

// PageSize returns the LIMIT used for every page.
func (c *Cursor) PageSize() int { return c.limit }

func (c *Cursor) fetch() error {
	clear(c.batch)
	c.pos = 0

	page := c.q.Page(c.limit, c.offset)
	rows := 0
	err := store.View(c.ctx, c.st, func(tx store.Tx) error {
		return tx.Select(c.ctx, page, func(sol query.Solution) error {
			if rows < c.limit {
				c.batch[rows] = sol
			}
			rows++
			return nil
		})
	})
	if err != nil {
		var qerr *errors.QueryError
		if !errors.As(err, &qerr) {
			err = errors.NewQuery(page.SPARQL(), err)
		}
		c.err = err
		c.done = true
		c.current = nil
		return err
	}

	logging.PageFetched(c.log, c.offset, c.limit, rows)
	if c.onPage != nil {
		c.onPage(c.offset, rows)
	}
	c.offset += c.limit
	c.fetches++
	return nil
}
