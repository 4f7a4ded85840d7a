// Package rdf holds the RDF term model shared by the store, query and
// projection layers. Terms are json-gold nodes so that parsed datasets flow
// through the generator without conversion.
package rdf

import (
	"fmt"

	"github.com/piprate/json-gold/ld"
)

// Term is an RDF term: an IRI, a blank node or a literal.
type Term = ld.Node

// Kind discriminates the three term variants. The numeric values are stored
// by the SQLite backend and must not change.
type Kind uint8

const (
	KindIRI Kind = iota
	KindBlank
	KindLiteral
)

func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IRI returns an IRI term.
func IRI(v string) Term { return ld.NewIRI(v) }

// Blank returns a blank node term. The id may carry the "_:" prefix.
func Blank(id string) Term { return ld.NewBlankNode(id) }

// Literal returns a plain string literal.
func Literal(v string) Term { return ld.NewLiteral(v, XSDString, "") }

// TypedLiteral returns a literal with an explicit datatype. An empty datatype
// means xsd:string.
func TypedLiteral(v, datatype string) Term {
	if datatype == "" {
		datatype = XSDString
	}
	return ld.NewLiteral(v, datatype, "")
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(v, lang string) Term {
	return ld.NewLiteral(v, RDFLangString, lang)
}

// KindOf reports the variant of t.
func KindOf(t Term) Kind {
	switch t.(type) {
	case *ld.Literal:
		return KindLiteral
	case *ld.BlankNode:
		return KindBlank
	}
	return KindIRI
}

// IsIRI reports whether t is an IRI.
func IsIRI(t Term) bool { return t != nil && ld.IsIRI(t) }

// IsLiteral reports whether t is a literal.
func IsLiteral(t Term) bool { return t != nil && ld.IsLiteral(t) }

// Value returns the lexical value of t: the IRI, the blank node label or
// the literal's lexical form.
func Value(t Term) string {
	if t == nil {
		return ""
	}
	return t.GetValue()
}

// Columns flattens t into the four columns used by tabular stores.
// Language-tagged literals carry no datatype column.
func Columns(t Term) (value string, kind Kind, datatype, lang string) {
	if lit, ok := t.(*ld.Literal); ok {
		if lit.Language != "" {
			return lit.Value, KindLiteral, "", lit.Language
		}
		datatype = lit.Datatype
		if datatype == "" {
			datatype = XSDString
		}
		return lit.Value, KindLiteral, datatype, ""
	}
	return Value(t), KindOf(t), "", ""
}

// FromColumns is the inverse of Columns.
func FromColumns(value string, kind Kind, datatype, lang string) Term {
	switch kind {
	case KindBlank:
		return Blank(value)
	case KindLiteral:
		if lang != "" {
			return LangLiteral(value, lang)
		}
		return TypedLiteral(value, datatype)
	}
	return IRI(value)
}

// Equal reports whether a and b denote the same term.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
