package emit

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/openbel/reggie/core/concept"
	"github.com/openbel/reggie/core/errors"
)

// Header is the context rendered into a resource file header.
type Header struct {
	ResourceURI     string
	Version         string
	CreatedDateTime string
}

// vars exposes h under the template variable names version,
// createdDateTime and, when set, uri.
func (h Header) vars() map[string]string {
	m := map[string]string{
		"version":         h.Version,
		"createdDateTime": h.CreatedDateTime,
	}
	if h.ResourceURI != "" {
		m["uri"] = h.ResourceURI
	}
	return m
}

// HeaderTemplate is a parsed header template.
type HeaderTemplate struct {
	path string
	tmpl *template.Template
}

// LoadHeaderTemplate reads and parses the template at path. Variables are
// referenced as {{.version}}, {{.createdDateTime}} and {{.uri}}; unset
// variables render empty.
func LoadHeaderTemplate(path string) (*HeaderTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read template", path, err)
	}
	tmpl, err := template.New(path).Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return nil, &errors.ParseError{Format: "template", Path: path, Message: err.Error(), Err: err}
	}
	return &HeaderTemplate{path: path, tmpl: tmpl}, nil
}

// Path returns the file the template was loaded from.
func (t *HeaderTemplate) Path() string { return t.path }

// Render renders the header for h.
func (t *HeaderTemplate) Render(h Header) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, h.vars()); err != nil {
		return nil, errors.Wrapf(err, "render template %s", t.path)
	}
	return buf.Bytes(), nil
}

// FindTemplate loads the template for slug under variant v in mode m from
// dir. A missing template is a NotFoundError (errors.ErrNotFound), which
// callers treat as "no target"; an unreadable or malformed one is any other
// error.
func FindTemplate(dir, slug string, v concept.Variant, m Mode) (*HeaderTemplate, error) {
	name := TemplateName(slug, v, m)
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.NewNotFound("template", name)
	}
	return LoadHeaderTemplate(path)
}
