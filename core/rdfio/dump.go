package rdfio

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/openbel/reggie/core/cursor"
	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/core/store"
	"github.com/openbel/reggie/internal/logging"
)

// DumpOptions configures Dump.
type DumpOptions struct {
	PageSize int
	Logger   *slog.Logger
}

// Dump writes every triple of st to w as N-Quads in store order, one page
// at a time. It returns the number of triples written.
func Dump(ctx context.Context, st store.Store, w io.Writer, opts DumpOptions) (int, error) {
	log := logging.Component(opts.Logger, "rdfio")

	c, err := cursor.Open(ctx, st, query.AllTriples(), cursor.Options{PageSize: opts.PageSize, Logger: log})
	if err != nil {
		return 0, err
	}
	defer c.Close()

	n := 0
	buf := make([]rdf.Triple, 0, c.PageSize())
	flush := func() error {
		if err := rdf.WriteNTriples(w, buf); err != nil {
			return errors.NewIO("write", "", err)
		}
		n += len(buf)
		buf = buf[:0]
		return nil
	}

	for c.Next() {
		sol := c.Solution()
		buf = append(buf, rdf.NewTriple(
			sol.Get(query.VarSubject),
			sol.Get(query.VarPredicate),
			sol.Get(query.VarObject),
		))
		if len(buf) == cap(buf) {
			if err := flush(); err != nil {
				return n, err
			}
		}
	}
	if err := c.Err(); err != nil {
		return n, err
	}
	if err := flush(); err != nil {
		return n, err
	}
	log.Info("store dumped", "triples", n)
	return n, nil
}

// DumpFile dumps st to path, xz-compressed when path ends in ".xz".
func DumpFile(ctx context.Context, st store.Store, path string, opts DumpOptions) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.NewIO("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.NewIO("close", path, cerr)
		}
	}()

	if !strings.HasSuffix(path, ".xz") {
		return Dump(ctx, st, f, opts)
	}

	xw, err := xz.NewWriter(f)
	if err != nil {
		return 0, errors.NewIO("compress", path, err)
	}
	n, err = Dump(ctx, st, xw, opts)
	if cerr := xw.Close(); cerr != nil && err == nil {
		err = errors.NewIO("compress", path, cerr)
	}
	return n, err
}
