// Command reggie generates BEL namespace, annotation and equivalence
// resources from an RDF triple store.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/openbel/reggie/core/cursor"
	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/generate"
	"github.com/openbel/reggie/core/manifest"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/core/rdfio"
	"github.com/openbel/reggie/core/store"
	"github.com/openbel/reggie/core/store/sparql"
	"github.com/openbel/reggie/core/store/sqlite"
	"github.com/openbel/reggie/core/uuids"
	"github.com/openbel/reggie/internal/archive"
	"github.com/openbel/reggie/internal/config"
	"github.com/openbel/reggie/internal/logging"
	"github.com/openbel/reggie/internal/metrics"
	"github.com/openbel/reggie/internal/validation"
)

const version = "0.1.0"

// stdout receives command results. Logs go to stderr.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for reggie.
type CLI struct {
	Globals `embed:""`

	Generate    GenerateCmd    `cmd:"" help:"Generate BEL resources from the store"`
	Check       CheckCmd       `cmd:"" help:"Check that every concept scheme has its templates"`
	Namespaces  NamespacesCmd  `cmd:"" help:"List the slugs of all namespace schemes"`
	AssignUUIDs AssignUUIDsCmd `cmd:"" name:"assign-uuids" help:"Place namespace values in UUID concept schemes"`
	Load        LoadCmd        `cmd:"" help:"Load RDF files into the store"`
	Dump        DumpCmd        `cmd:"" help:"Dump the store as N-Quads"`
	Query       QueryCmd       `cmd:"" help:"Run a SELECT query and print tab-separated solutions"`
	Verify      VerifyCmd      `cmd:"" help:"Verify generated files against a manifest"`
	Bundle      BundleCmd      `cmd:"" help:"Bundle generated resources into a tar.xz archive"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

// Globals are the flags shared by every command.
type Globals struct {
	Store       string `name:"store" short:"s" env:"RG_STORE" help:"SQLite triple store file" type:"path"`
	SPARQLURL   string `name:"sparql-url" env:"RG_RDF_SPARQL_URL" help:"SPARQL endpoint base URL (query and update sub-paths)"`
	PageSize    int    `name:"page-size" env:"RG_PAGE_SIZE" default:"1000" help:"Rows fetched per query page"`
	LogLevel    string `name:"log-level" env:"RG_LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat   string `name:"log-format" env:"RG_LOG_FORMAT" default:"text" help:"Log format (text, json)"`
	MetricsFile string `name:"metrics-file" env:"RG_METRICS_FILE" help:"Write run metrics in Prometheus textfile format" type:"path"`
}

// run is the per-invocation state built from Globals.
type run struct {
	ctx context.Context
	log *slog.Logger
	rec *metrics.Recorder
	g   *Globals
}

func (g *Globals) start(ctx context.Context) (*run, error) {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, errors.NewConfig(config.EnvLogLevel, err.Error())
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return nil, errors.NewConfig(config.EnvLogFormat, err.Error())
	}
	r := &run{
		ctx: ctx,
		log: logging.New(logging.Options{Level: level, Format: format}),
		g:   g,
	}
	if g.MetricsFile != "" {
		r.rec = metrics.New()
	}
	return r, nil
}

// openStore opens the SQLite store, or the SPARQL endpoint when no store
// file is given.
func (r *run) openStore() (store.Store, error) {
	switch {
	case r.g.Store != "":
		r.log.Debug("opening store", "path", r.g.Store, "driver", sqlite.DriverType())
		st, err := sqlite.Open(r.ctx, r.g.Store)
		if err != nil {
			return nil, err
		}
		return st, nil
	case r.g.SPARQLURL != "":
		r.log.Debug("using sparql endpoint", "url", r.g.SPARQLURL)
		c, err := sparql.New(r.g.SPARQLURL, sparql.Options{Logger: r.log})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, errors.NewConfig(config.EnvStore, "is not set (nor "+config.EnvSPARQLURL+")")
}

// finish writes metrics and logs err. It returns err, or the metrics
// failure when err is nil.
func (r *run) finish(op string, err error) error {
	if merr := r.rec.WriteTextfile(r.g.MetricsFile); merr != nil && err == nil {
		err = errors.NewIO("write metrics", r.g.MetricsFile, merr)
	}
	if err != nil {
		logging.RunError(r.log, op, err)
	}
	return err
}

// withStore runs fn against an opened store and closes it afterwards.
func (g *Globals) withStore(op string, fn func(*run, store.Store) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r, err := g.start(ctx)
	if err != nil {
		return err
	}
	st, err := r.openStore()
	if err != nil {
		return r.finish(op, err)
	}
	err = fn(r, st)
	if cerr := st.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "close store")
	}
	return r.finish(op, err)
}

// OutputFlags locate the resource directories.
type OutputFlags struct {
	Output            string `name:"output" short:"o" env:"RG_OUTPUT" help:"Root of the namespace, annotation and equivalence directories" type:"path"`
	NamespaceOutput   string `name:"ns-output" env:"RG_NS_OUTPUT" help:"Namespace resource directory" type:"path"`
	AnnotationOutput  string `name:"anno-output" env:"RG_ANNO_OUTPUT" help:"Annotation resource directory" type:"path"`
	EquivalenceOutput string `name:"eq-output" env:"RG_EQ_OUTPUT" help:"Equivalence resource directory" type:"path"`
}

func (o OutputFlags) resolve() (config.Output, error) {
	return config.Output{
		Root:        o.Output,
		Namespace:   o.NamespaceOutput,
		Annotation:  o.AnnotationOutput,
		Equivalence: o.EquivalenceOutput,
	}.Resolve()
}

// GenerateCmd writes resource files.
type GenerateCmd struct {
	OutputFlags `embed:""`

	Target          string `arg:"" optional:"" default:"all" enum:"all,namespaces,annotations,equivalences" help:"Resources to generate (all, namespaces, annotations, equivalences)"`
	Templates       string `name:"templates" short:"t" env:"RG_TEMPLATES" help:"Header template directory" type:"path"`
	Version         string `name:"resource-version" env:"RG_RESOURCE_VERSION" help:"Value of the version header variable"`
	CreatedDateTime string `name:"resource-dt" env:"RG_RESOURCE_DT" help:"Value of the createdDateTime header variable"`
	Manifest        string `name:"manifest" help:"Write a BLAKE3 manifest of the generated files; paths are relative to its directory" type:"path"`
}

func (c *GenerateCmd) Run(g *Globals) error {
	if err := config.Require(
		config.Set(config.EnvTemplates, c.Templates),
		config.Set(config.EnvVersion, c.Version),
		config.Set(config.EnvCreatedDateTime, c.CreatedDateTime),
	); err != nil {
		return err
	}
	out, err := c.resolve()
	if err != nil {
		return err
	}
	if err := config.EnsureDirs(out.Dirs()...); err != nil {
		return err
	}

	return g.withStore("generate", func(r *run, st store.Store) error {
		gen := generate.New(st, generate.Config{
			TemplateDir:     c.Templates,
			NamespaceDir:    out.Namespace,
			AnnotationDir:   out.Annotation,
			EquivalenceDir:  out.Equivalence,
			Version:         c.Version,
			CreatedDateTime: c.CreatedDateTime,
			PageSize:        g.PageSize,
		}, generate.Options{Logger: r.log, Metrics: r.rec})

		var err error
		switch c.Target {
		case "namespaces":
			err = gen.Namespaces(r.ctx)
		case "annotations":
			err = gen.Annotations(r.ctx)
		case "equivalences":
			err = gen.Equivalences(r.ctx)
		default:
			err = gen.All(r.ctx)
		}
		if err != nil {
			return err
		}

		written := gen.Written()
		for _, p := range written {
			fmt.Fprintln(stdout, p)
		}
		if c.Manifest == "" {
			return nil
		}
		m, err := manifest.Build(filepath.Dir(c.Manifest), written)
		if err != nil {
			return err
		}
		m.Version = c.Version
		m.CreatedDateTime = c.CreatedDateTime
		if err := m.WriteFile(c.Manifest); err != nil {
			return err
		}
		r.log.Info("manifest written", "path", c.Manifest, "files", len(m.Files))
		return nil
	})
}

// CheckCmd reports schemes without templates.
type CheckCmd struct {
	Templates string `name:"templates" short:"t" env:"RG_TEMPLATES" help:"Header template directory" type:"path"`
}

func (c *CheckCmd) Run(g *Globals) error {
	if err := config.Require(config.Set(config.EnvTemplates, c.Templates)); err != nil {
		return err
	}
	return g.withStore("check", func(r *run, st store.Store) error {
		gen := generate.New(st, generate.Config{TemplateDir: c.Templates, PageSize: g.PageSize},
			generate.Options{Logger: r.log, Metrics: r.rec})
		report, err := gen.Check(r.ctx)
		if err != nil {
			return err
		}
		for _, slug := range report.Namespaces {
			fmt.Fprintf(stdout, "namespace\t%s\n", slug)
		}
		for _, slug := range report.Annotations {
			fmt.Fprintf(stdout, "annotation\t%s\n", slug)
		}
		if !report.OK() {
			return fmt.Errorf("%d namespace and %d annotation schemes have no template",
				len(report.Namespaces), len(report.Annotations))
		}
		return nil
	})
}

// NamespacesCmd lists namespace slugs.
type NamespacesCmd struct{}

func (c *NamespacesCmd) Run(g *Globals) error {
	return g.withStore("namespaces", func(r *run, st store.Store) error {
		gen := generate.New(st, generate.Config{PageSize: g.PageSize}, generate.Options{Logger: r.log})
		slugs, err := gen.NamespaceSlugs(r.ctx)
		if err != nil {
			return err
		}
		for _, s := range slugs {
			fmt.Fprintln(stdout, s)
		}
		return nil
	})
}

// AssignUUIDsCmd mints UUID concept schemes.
type AssignUUIDsCmd struct {
	Output string `name:"output" short:"o" default:"-" help:"N-Triples output file, - for stdout"`
	Insert bool   `name:"insert" help:"Also insert the assignments into the store"`
}

func (c *AssignUUIDsCmd) Run(g *Globals) error {
	return g.withStore("assign-uuids", func(r *run, st store.Store) (err error) {
		w := stdout
		if c.Output != "-" {
			f, err := os.Create(c.Output)
			if err != nil {
				return errors.NewIO("create", c.Output, err)
			}
			defer func() {
				if cerr := f.Close(); cerr != nil && err == nil {
					err = errors.NewIO("close", c.Output, cerr)
				}
			}()
			w = f
		}
		a := uuids.New(st, uuids.Options{Logger: r.log, PageSize: g.PageSize, Insert: c.Insert})
		_, err = a.Assign(r.ctx, w)
		return err
	})
}

// LoadCmd loads RDF files.
type LoadCmd struct {
	Files     []string `arg:"" help:"RDF files (N-Quads, N-Triples, JSON-LD, RDF/XML; optionally .xz)" type:"existingfile"`
	Format    string   `name:"format" short:"f" help:"Input format; detected from name and content when empty"`
	Base      string   `name:"base" help:"Base IRI for JSON-LD documents"`
	BatchSize int      `name:"batch-size" default:"10000" help:"Triples per write transaction"`
}

func (c *LoadCmd) Run(g *Globals) error {
	format := validation.FormatUnknown
	if c.Format != "" {
		f, err := validation.ParseFormat(c.Format)
		if err != nil {
			return errors.NewValidation("format", err.Error())
		}
		format = f
	}

	return g.withStore("load", func(r *run, st store.Store) error {
		total := 0
		for _, path := range c.Files {
			f, err := rdfio.OpenFile(path, format)
			if err != nil {
				return err
			}
			n, err := rdfio.Load(r.ctx, st, f, rdfio.LoadOptions{
				Format:    f.Format,
				BaseIRI:   c.Base,
				BatchSize: c.BatchSize,
				Logger:    r.log.With("file", path),
			})
			f.Close()
			if err != nil {
				return errors.Wrapf(err, "load %s", path)
			}
			total += n
		}
		fmt.Fprintf(stdout, "loaded %d triples from %d files\n", total, len(c.Files))
		return nil
	})
}

// DumpCmd writes the store as N-Quads.
type DumpCmd struct {
	Output string `arg:"" optional:"" default:"-" help:"Output file (.xz compresses), - for stdout"`
}

func (c *DumpCmd) Run(g *Globals) error {
	return g.withStore("dump", func(r *run, st store.Store) error {
		opts := rdfio.DumpOptions{PageSize: g.PageSize, Logger: r.log}
		if c.Output == "-" {
			_, err := rdfio.Dump(r.ctx, st, stdout, opts)
			return err
		}
		_, err := rdfio.DumpFile(r.ctx, st, c.Output, opts)
		return err
	})
}

// QueryCmd runs an ad-hoc query.
type QueryCmd struct {
	Query string `arg:"" help:"SELECT query, or @file to read it from a file"`
}

func (c *QueryCmd) Run(g *Globals) error {
	text := c.Query
	if strings.HasPrefix(text, "@") {
		data, err := os.ReadFile(text[1:])
		if err != nil {
			return errors.NewIO("read", text[1:], err)
		}
		text = string(data)
	}
	q, err := query.Parse(text)
	if err != nil {
		return err
	}

	return g.withStore("query", func(r *run, st store.Store) error {
		vars := q.Projection()
		header := make([]string, len(vars))
		for i, v := range vars {
			header[i] = "?" + v
		}
		fmt.Fprintln(stdout, strings.Join(header, "\t"))

		printRow := func(sol query.Solution) {
			row := make([]string, len(vars))
			for i, v := range vars {
				if t := sol.Get(v); t != nil {
					row[i] = rdf.Format(t)
				}
			}
			fmt.Fprintln(stdout, strings.Join(row, "\t"))
		}

		// An explicit LIMIT or OFFSET is a single page.
		if q.Limit > 0 || q.Offset > 0 {
			rows, err := store.Collect(r.ctx, st, q)
			if err != nil {
				return err
			}
			for _, sol := range rows {
				printRow(sol)
			}
			return nil
		}

		cur, err := cursor.Open(r.ctx, st, q, cursor.Options{
			PageSize: g.PageSize,
			Logger:   r.log,
			OnPage:   func(_, rows int) { r.rec.PageFetched(rows) },
		})
		if err != nil {
			return err
		}
		defer cur.Close()
		for cur.Next() {
			printRow(cur.Solution())
		}
		return cur.Err()
	})
}

// VerifyCmd re-hashes the files of a manifest.
type VerifyCmd struct {
	Manifest string `arg:"" help:"Manifest written by generate --manifest" type:"existingfile"`
	Bundle   string `name:"bundle" help:"Check the files inside this .tar.xz bundle instead of the output directories" type:"existingfile"`
}

func (c *VerifyCmd) Run() error {
	m, err := manifest.Load(c.Manifest)
	if err != nil {
		return err
	}

	var drift []manifest.Drift
	if c.Bundle != "" {
		drift, err = bundleDrift(c.Bundle, m)
	} else {
		drift, err = manifest.Verify(filepath.Dir(c.Manifest), m)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Manifest: %s\n", c.Manifest)
	if c.Bundle != "" {
		fmt.Fprintf(stdout, "  Bundle: %s\n", c.Bundle)
	}
	fmt.Fprintf(stdout, "  Version: %s\n", m.Version)
	fmt.Fprintf(stdout, "  Created: %s\n", m.CreatedDateTime)
	fmt.Fprintf(stdout, "  Files: %d\n", len(m.Files))
	for _, d := range drift {
		fmt.Fprintf(stdout, "  [FAIL] %s: %s\n", d.Path, d.Reason)
	}
	if len(drift) > 0 {
		return fmt.Errorf("%d of %d files drifted", len(drift), len(m.Files))
	}
	fmt.Fprintln(stdout, "  [OK] all files match")
	return nil
}

// bundleDrift hashes every file of a bundle and compares it with m. Bundle
// entry names and manifest paths share the namespace/annotation/equivalence
// layout when the manifest sits in the output root.
func bundleDrift(bundle string, m *manifest.Manifest) ([]manifest.Drift, error) {
	found := map[string]manifest.Entry{}
	err := archive.Walk(bundle, func(name string, content io.Reader) error {
		digest, size, err := manifest.HashReader(content)
		if err != nil {
			return errors.NewIO("read", bundle+"!"+name, err)
		}
		found[name] = manifest.Entry{Path: name, Size: size, BLAKE3: digest}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifest.Compare(m, found), nil
}

// BundleCmd archives the resource directories.
type BundleCmd struct {
	OutputFlags `embed:""`

	Archive         string `arg:"" help:"Destination .tar.xz file" type:"path"`
	CreatedDateTime string `name:"resource-dt" env:"RG_RESOURCE_DT" help:"Timestamp stamped on every entry (2006-01-02T15:04:05)"`
}

func (c *BundleCmd) Run(g *Globals) error {
	if !strings.HasSuffix(c.Archive, ".tar.xz") {
		return errors.NewValidation("archive", "must end in .tar.xz")
	}
	out, err := c.resolve()
	if err != nil {
		return err
	}
	var mtime time.Time
	if c.CreatedDateTime != "" {
		mtime, err = time.Parse("2006-01-02T15:04:05", c.CreatedDateTime)
		if err != nil {
			return errors.NewConfig(config.EnvCreatedDateTime, fmt.Sprintf("is not a timestamp: %q", c.CreatedDateTime))
		}
	} else {
		mtime = time.Unix(0, 0)
	}

	names, err := archive.CreateTarXz(c.Archive, []archive.Source{
		{Dir: out.Namespace, Prefix: "namespace"},
		{Dir: out.Annotation, Prefix: "annotation"},
		{Dir: out.Equivalence, Prefix: "equivalence"},
	}, mtime)
	if err != nil {
		return errors.Wrap(err, "bundle")
	}
	fmt.Fprintf(stdout, "%s: %d entries\n", c.Archive, len(names))
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := sqlite.GetInfo()
	fmt.Fprintf(stdout, "reggie version %s (sqlite %s, %s)\n", version, info.DriverType, info.Package)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("reggie"),
		kong.Description("BEL resource generator over an RDF triple store"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
