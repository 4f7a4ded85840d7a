// Package query defines typed SELECT queries over basic graph patterns.
//
// Queries are built from tagged terms instead of string concatenation, so
// backends can bind values as parameters (SQL) or render them with proper
// escaping (SPARQL).
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/rdf"
)

// Term is one position of a triple pattern: either a variable or a concrete
// RDF term.
type Term struct {
	Var   string
	Value rdf.Term
}

// Var returns a variable term. The leading '?' is optional.
func Var(name string) Term {
	return Term{Var: strings.TrimPrefix(name, "?")}
}

// IRI returns a concrete IRI term.
func IRI(iri string) Term { return Term{Value: rdf.IRI(iri)} }

// Literal returns a concrete plain literal term.
func Literal(v string) Term { return Term{Value: rdf.Literal(v)} }

// Node wraps an existing RDF term.
func Node(t rdf.Term) Term { return Term{Value: t} }

// IsVar reports whether t is a variable.
func (t Term) IsVar() bool { return t.Var != "" }

func (t Term) String() string {
	if t.IsVar() {
		return "?" + t.Var
	}
	return rdf.Format(t.Value)
}

// Pattern is a single triple pattern.
type Pattern struct {
	S, P, O Term
}

func (p Pattern) String() string {
	return p.S.String() + " " + p.P.String() + " " + p.O.String() + " ."
}

// Select is a SELECT query over a conjunction of patterns. Zero Limit means
// unbounded.
type Select struct {
	Vars   []string
	Where  []Pattern
	Limit  int
	Offset int
}

// Solution binds variable names to terms.
type Solution map[string]rdf.Term

// Get returns the binding of name, or nil.
func (s Solution) Get(name string) rdf.Term {
	return s[strings.TrimPrefix(name, "?")]
}

// Projection returns the projected variables. With no explicit variables
// every variable of the patterns is projected, in order of first appearance.
func (q Select) Projection() []string {
	if len(q.Vars) > 0 {
		return q.Vars
	}
	var vars []string
	seen := map[string]bool{}
	for _, p := range q.Where {
		for _, t := range []Term{p.S, p.P, p.O} {
			if t.IsVar() && !seen[t.Var] {
				seen[t.Var] = true
				vars = append(vars, t.Var)
			}
		}
	}
	return vars
}

// Page returns a copy of q with the given LIMIT and OFFSET.
func (q Select) Page(limit, offset int) Select {
	q.Limit = limit
	q.Offset = offset
	return q
}

var (
	varName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	badIRI  = regexp.MustCompile("[\\s<>\"{}|^`\\\\]")
)

// Validate checks that q can be executed by every backend.
func (q Select) Validate() error {
	if len(q.Where) == 0 {
		return errors.NewValidation("where", "no patterns")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return errors.NewValidation("page", "negative limit or offset")
	}

	bound := map[string]bool{}
	for i, p := range q.Where {
		for _, slot := range []struct {
			pos  string
			term Term
		}{{"subject", p.S}, {"predicate", p.P}, {"object", p.O}} {
			pos, t := slot.pos, slot.term
			field := fmt.Sprintf("pattern %d %s", i, pos)
			if err := validateTerm(field, t); err != nil {
				return err
			}
			if t.IsVar() {
				bound[t.Var] = true
				continue
			}
			if pos != "object" && rdf.IsLiteral(t.Value) {
				return errors.NewValidation(field, "literal outside object position")
			}
			if pos == "predicate" && !rdf.IsIRI(t.Value) {
				return errors.NewValidation(field, "predicate must be an IRI")
			}
		}
	}

	for _, v := range q.Vars {
		if !varName.MatchString(v) {
			return errors.NewValidation("vars", "invalid variable name "+strconv.Quote(v))
		}
		if !bound[v] {
			return errors.NewValidation("vars", "?"+v+" does not appear in any pattern")
		}
	}
	return nil
}

func validateTerm(field string, t Term) error {
	if t.IsVar() {
		if !varName.MatchString(t.Var) {
			return errors.NewValidation(field, "invalid variable name "+strconv.Quote(t.Var))
		}
		return nil
	}
	if t.Value == nil {
		return errors.NewValidation(field, "empty term")
	}
	if rdf.KindOf(t.Value) == rdf.KindBlank {
		return errors.NewValidation(field, "blank node "+rdf.Format(t.Value)+" cannot be matched, use a variable")
	}
	if rdf.IsIRI(t.Value) {
		iri := rdf.Value(t.Value)
		if iri == "" || badIRI.MatchString(iri) {
			return errors.NewValidation(field, "invalid IRI "+strconv.Quote(iri))
		}
	}
	return nil
}
