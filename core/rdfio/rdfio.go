// Package rdfio moves RDF between files and a triple store: it parses
// N-Quads, JSON-LD and RDF/XML into batched inserts and dumps a store back
// out as N-Quads through the paged cursor.
package rdfio

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/piprate/json-gold/ld"
	"github.com/ulikunitz/xz"

	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/core/store"
	"github.com/openbel/reggie/internal/logging"
	"github.com/openbel/reggie/internal/validation"
)

// DefaultBatchSize is the number of triples inserted per write transaction.
const DefaultBatchSize = 10000

// Parse reads every triple of r in the given format. base resolves
// relative IRIs in JSON-LD documents.
func Parse(r io.Reader, format validation.Format, base string) ([]rdf.Triple, error) {
	switch format {
	case validation.FormatNQuads:
		ds, err := ld.ParseNQuadsFrom(r)
		if err != nil {
			return nil, &errors.ParseError{Format: "N-Quads", Message: err.Error(), Err: err}
		}
		return rdf.Triples(ds), nil

	case validation.FormatJSONLD:
		var doc interface{}
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, &errors.ParseError{Format: "JSON-LD", Message: err.Error(), Err: err}
		}
		out, err := ld.NewJsonLdProcessor().ToRDF(doc, ld.NewJsonLdOptions(base))
		if err != nil {
			return nil, &errors.ParseError{Format: "JSON-LD", Message: err.Error(), Err: err}
		}
		ds, ok := out.(*ld.RDFDataset)
		if !ok {
			return nil, errors.NewParse("JSON-LD", "", "processor did not return a dataset")
		}
		return rdf.Triples(ds), nil

	case validation.FormatRDFXML:
		return parseRDFXML(r)
	}
	return nil, errors.NewUnsupported("RDF format", string(format))
}

// LoadOptions configures Load.
type LoadOptions struct {
	Format    validation.Format
	BaseIRI   string
	BatchSize int
	Logger    *slog.Logger
}

// Load parses r and inserts its triples into st in batches, one write
// transaction per batch. It returns the number of triples inserted.
func Load(ctx context.Context, st store.Store, r io.Reader, opts LoadOptions) (int, error) {
	log := logging.Component(opts.Logger, "rdfio")
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	triples, err := Parse(r, opts.Format, opts.BaseIRI)
	if err != nil {
		return 0, err
	}

	n := 0
	for start := 0; start < len(triples); start += batch {
		chunk := triples[start:min(start+batch, len(triples))]
		if err := store.Update(ctx, st, func(tx store.Tx) error {
			return tx.Insert(ctx, chunk)
		}); err != nil {
			return n, errors.Wrapf(err, "insert batch at %d", start)
		}
		n += len(chunk)
		log.Debug("batch inserted", "offset", start, "triples", len(chunk))
	}
	log.Info("triples loaded", "format", string(opts.Format), "triples", n)
	return n, nil
}

// File is an opened RDF input.
type File struct {
	io.Reader
	Format validation.Format
	f      *os.File
}

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }

// OpenFile opens path for reading, decompressing xz streams and detecting
// the format when format is FormatUnknown or empty.
func OpenFile(path string, format validation.Format) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	br := bufio.NewReader(f)
	head, _ := br.Peek(6)
	var r io.Reader = br
	if validation.IsXZ(head) {
		xr, err := xz.NewReader(br)
		if err != nil {
			f.Close()
			return nil, errors.NewIO("decompress", path, err)
		}
		br = bufio.NewReader(xr)
		r = br
	}

	if format == "" || format == validation.FormatUnknown {
		format = validation.DetectFormat(br, path)
	}
	if format == validation.FormatUnknown {
		f.Close()
		return nil, errors.NewUnsupported("RDF format", "cannot detect format of "+path)
	}
	return &File{Reader: r, Format: format, f: f}, nil
}
