// Package config names the RG_* settings and checks them before a run.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/openbel/reggie/core/errors"
)

// Environment variables read by the CLI.
const (
	EnvStore             = "RG_STORE"
	EnvSPARQLURL         = "RG_RDF_SPARQL_URL"
	EnvTemplates         = "RG_TEMPLATES"
	EnvOutput            = "RG_OUTPUT"
	EnvNamespaceOutput   = "RG_NS_OUTPUT"
	EnvAnnotationOutput  = "RG_ANNO_OUTPUT"
	EnvEquivalenceOutput = "RG_EQ_OUTPUT"
	EnvVersion           = "RG_RESOURCE_VERSION"
	EnvCreatedDateTime   = "RG_RESOURCE_DT"
	EnvPageSize          = "RG_PAGE_SIZE"
	EnvLogLevel          = "RG_LOG_LEVEL"
	EnvLogFormat         = "RG_LOG_FORMAT"
	EnvMetricsFile       = "RG_METRICS_FILE"
)

// Setting pairs a setting name with its resolved value.
type Setting struct {
	Name  string
	Value string
}

// Set is shorthand for a Setting.
func Set(name, value string) Setting {
	return Setting{Name: name, Value: value}
}

// Require reports every blank setting, joined into one error.
func Require(settings ...Setting) error {
	var errs []error
	for _, s := range settings {
		if strings.TrimSpace(s.Value) == "" {
			errs = append(errs, errors.NewConfig(s.Name, "is not set"))
		}
	}
	return errors.Join(errs...)
}

// Output holds the output directories of a run.
type Output struct {
	Root        string
	Namespace   string
	Annotation  string
	Equivalence string
}

// Resolve fills unset resource directories from Root as
// Root/{namespace,annotation,equivalence}. It fails when a directory is
// still unset.
func (o Output) Resolve() (Output, error) {
	def := func(dir, sub string) string {
		if dir != "" || o.Root == "" {
			return dir
		}
		return filepath.Join(o.Root, sub)
	}
	o.Namespace = def(o.Namespace, "namespace")
	o.Annotation = def(o.Annotation, "annotation")
	o.Equivalence = def(o.Equivalence, "equivalence")

	return o, Require(
		Set(EnvNamespaceOutput, o.Namespace),
		Set(EnvAnnotationOutput, o.Annotation),
		Set(EnvEquivalenceOutput, o.Equivalence),
	)
}

// Dirs returns the resource directories.
func (o Output) Dirs() []string {
	return []string{o.Namespace, o.Annotation, o.Equivalence}
}

// EnsureDirs creates every directory in dirs.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return errors.NewIO("create directory", d, err)
		}
	}
	return nil
}
