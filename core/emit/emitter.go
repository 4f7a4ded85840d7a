// Package emit writes concepts into pipe-delimited BEL resource files.
//
// Each resource file starts with a header rendered from a template and
// continues with one "discriminator|secondary" line per complete concept.
// The file is created on the first concept written to it, so a scheme
// without values produces no file.
package emit

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openbel/reggie/core/concept"
	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/internal/logging"
	"github.com/openbel/reggie/internal/metrics"
)

// Target describes one resource file.
type Target struct {
	Variant   concept.Variant
	Mode      Mode
	Slug      string
	Template  *HeaderTemplate
	OutputDir string
}

// Path returns the resource file path.
func (t Target) Path() string {
	return filepath.Join(t.OutputDir, FileName(t.Slug, t.Variant, t.Mode))
}

// Options configures an Emitter.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
}

// Emitter writes one resource file.
type Emitter struct {
	target Target
	rule   Rule
	header Header
	path   string

	f      *os.File
	w      *bufio.Writer
	lines  int
	skip   int
	log    *slog.Logger
	rec    *metrics.Recorder
	closed bool
}

// New prepares an emitter for target. Nothing is written until the first
// concept arrives.
func New(target Target, header Header, opts Options) *Emitter {
	e := &Emitter{
		target: target,
		rule:   RuleFor(target.Variant, target.Mode),
		header: header,
		path:   target.Path(),
		log:    logging.Component(opts.Logger, "emit"),
		rec:    opts.Metrics,
	}
	e.log.Debug("resource target",
		"variant", target.Variant.String(),
		"mode", target.Mode.String(),
		"path", e.path,
	)
	return e
}

// Path returns the resource file path.
func (e *Emitter) Path() string { return e.path }

// Opened reports whether the resource file has been created.
func (e *Emitter) Opened() bool { return e.f != nil }

// Lines returns the number of value lines written.
func (e *Emitter) Lines() int { return e.lines }

// Skipped returns the number of incomplete concepts skipped.
func (e *Emitter) Skipped() int { return e.skip }

// Write appends the line for c. The first concept opens the file and
// writes the header, complete or not; incomplete concepts are then skipped
// without error.
func (e *Emitter) Write(c concept.Concept) error {
	if e.closed {
		return errors.NewIO("write", e.path, os.ErrClosed)
	}
	if e.f == nil {
		if err := e.open(); err != nil {
			return err
		}
	}
	line, ok := e.rule.Line(c)
	if !ok {
		e.skip++
		e.rec.ConceptSkipped(e.target.Variant.String())
		return nil
	}
	if _, err := e.w.WriteString(line); err != nil {
		return errors.NewIO("write", e.path, err)
	}
	e.lines++
	e.rec.LineWritten(e.target.Variant.String())
	return nil
}

func (e *Emitter) open() error {
	if _, err := os.Stat(e.path); err == nil {
		e.log.Info("overwriting resource", "path", e.path)
	} else {
		e.log.Info("creating resource", "path", e.path)
	}

	f, err := os.Create(e.path)
	if err != nil {
		return errors.NewIO("create", e.path, err)
	}
	e.f = f
	e.w = bufio.NewWriter(f)

	if e.target.Template == nil {
		return nil
	}
	hdr, err := e.target.Template.Render(e.header)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(hdr); err != nil {
		return errors.NewIO("write header", e.path, err)
	}
	return nil
}

// Close flushes and closes the resource file if it was opened.
func (e *Emitter) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.f == nil {
		return nil
	}

	flushErr := e.w.Flush()
	closeErr := e.f.Close()
	if flushErr != nil {
		return errors.NewIO("flush", e.path, flushErr)
	}
	if closeErr != nil {
		return errors.NewIO("close", e.path, closeErr)
	}

	logging.ResourceWritten(e.log, e.target.Variant.String(), e.path, e.lines, e.skip, "mode", e.target.Mode.String())
	e.rec.FileWritten(e.target.Variant.String())
	return nil
}
