// Package sparql implements the triple store on a remote SPARQL 1.1
// endpoint. Queries are posted to <base>query and updates to <base>update.
package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
	"github.com/openbel/reggie/core/store"
	"github.com/openbel/reggie/internal/logging"
)

const (
	resultsMediaType = "application/sparql-results+json"
	formMediaType    = "application/x-www-form-urlencoded"
	maxErrorBody     = 512
)

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a store.Store backed by a SPARQL endpoint.
type Client struct {
	queryURL  string
	updateURL string
	http      *http.Client
	log       *slog.Logger
}

var _ store.Store = (*Client)(nil)

// New returns a client for the endpoint rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.NewConfig("RG_RDF_SPARQL_URL", fmt.Sprintf("is not an http(s) URL: %q", baseURL))
	}
	base := u.String()
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{
		queryURL:  base + "query",
		updateURL: base + "update",
		http:      hc,
		log:       logging.Component(opts.Logger, "sparql"),
	}, nil
}

// Begin starts a transaction. Reads go straight to the endpoint; writes
// are buffered and sent as one INSERT DATA on Commit.
func (c *Client) Begin(_ context.Context, writable bool) (store.Tx, error) {
	return &Tx{c: c, writable: writable}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Tx is a SPARQL endpoint transaction.
type Tx struct {
	c        *Client
	writable bool
	done     bool
	pending  []rdf.Triple
}

// Select posts q to the query endpoint.
func (t *Tx) Select(ctx context.Context, q query.Select, fn func(query.Solution) error) error {
	if t.done {
		return store.ErrTxDone
	}
	if err := q.Validate(); err != nil {
		return err
	}
	text := q.SPARQL()

	body, err := t.c.post(ctx, t.c.queryURL, "query", text, resultsMediaType)
	if err != nil {
		return errors.NewQuery(text, err)
	}
	defer body.Close()

	var res results
	if err := json.NewDecoder(body).Decode(&res); err != nil {
		return errors.NewQuery(text, fmt.Errorf("decode results: %w", err))
	}
	t.c.log.Debug("select", "rows", len(res.Results.Bindings), "limit", q.Limit, "offset", q.Offset)

	vars := q.Projection()
	for _, b := range res.Results.Bindings {
		sol := make(query.Solution, len(vars))
		for _, v := range vars {
			if val, ok := b[v]; ok {
				sol[v] = val.term()
			}
		}
		if err := fn(sol); err != nil {
			return err
		}
	}
	return nil
}

// Insert buffers triples until Commit.
func (t *Tx) Insert(_ context.Context, triples []rdf.Triple) error {
	if t.done {
		return store.ErrTxDone
	}
	if !t.writable {
		return store.ErrReadOnly
	}
	t.pending = append(t.pending, triples...)
	return nil
}

// Commit sends buffered inserts.
func (t *Tx) Commit() error {
	if t.done {
		return store.ErrTxDone
	}
	t.done = true
	if len(t.pending) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT DATA {\n")
	for _, tr := range t.pending {
		b.WriteString("  ")
		b.WriteString(rdf.FormatTriple(tr))
		b.WriteByte('\n')
	}
	b.WriteString("}")

	text := b.String()
	body, err := t.c.post(context.Background(), t.c.updateURL, "update", text, "*/*")
	if err != nil {
		return errors.NewQuery(text, err)
	}
	body.Close()
	t.c.log.Debug("insert", "triples", len(t.pending))
	t.pending = nil
	return nil
}

// Rollback discards buffered inserts.
func (t *Tx) Rollback() error {
	if t.done {
		return store.ErrTxDone
	}
	t.done = true
	t.pending = nil
	return nil
}

func (c *Client) post(ctx context.Context, endpoint, field, text, accept string) (io.ReadCloser, error) {
	form := url.Values{field: {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", formMediaType)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return resp.Body, nil
}

// results is the application/sparql-results+json document.
type results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

type binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang"`
	Datatype string `json:"datatype"`
}

func (b binding) term() rdf.Term {
	switch b.Type {
	case "uri":
		return rdf.IRI(b.Value)
	case "bnode":
		return rdf.Blank("_:" + b.Value)
	}
	if b.Lang != "" {
		return rdf.LangLiteral(b.Value, b.Lang)
	}
	return rdf.TypedLiteral(b.Value, b.Datatype)
}
