package rdf

import (
	"strings"

	"github.com/piprate/json-gold/ld"
)

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Format renders t in N-Triples term syntax. The result is also valid in
// SPARQL query text.
func Format(t Term) string {
	switch n := t.(type) {
	case *ld.IRI:
		return "<" + n.Value + ">"
	case *ld.BlankNode:
		if strings.HasPrefix(n.Attribute, "_:") {
			return n.Attribute
		}
		return "_:" + n.Attribute
	case *ld.Literal:
		var b strings.Builder
		b.WriteByte('"')
		b.WriteString(literalEscaper.Replace(n.Value))
		b.WriteByte('"')
		switch {
		case n.Language != "":
			b.WriteByte('@')
			b.WriteString(n.Language)
		case n.Datatype != "" && n.Datatype != XSDString:
			b.WriteString("^^<")
			b.WriteString(n.Datatype)
			b.WriteByte('>')
		}
		return b.String()
	}
	return ""
}

// FormatTriple renders t as one N-Triples statement without the newline.
func FormatTriple(t Triple) string {
	return Format(t.Subject) + " " + Format(t.Predicate) + " " + Format(t.Object) + " ."
}

// Expand resolves a prefixed name such as "skos:prefLabel" against Prefixes.
// The second result is false when the prefix is unknown.
func Expand(pname string) (string, bool) {
	prefix, local, ok := strings.Cut(pname, ":")
	if !ok {
		return "", false
	}
	ns, ok := Prefixes[prefix]
	if !ok {
		return "", false
	}
	return ns + local, true
}
