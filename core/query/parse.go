package query

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/rdf"
)

// selectGrammar is the participle grammar for the SELECT subset accepted by
// Parse:
//
//	PREFIX ex: <http://example.org/>
//	SELECT ?s ?label WHERE { ?s a ex:Thing . ?s skos:prefLabel ?label } LIMIT 10
//
//nolint:govet // participle grammar tags are not standard struct tags
type selectGrammar struct {
	Prefixes []*prefixDecl    `@@*`
	All      bool             `"SELECT" ( @"*"`
	Vars     []string         `         | @Var+ )`
	Where    []*patternClause `"WHERE" "{" @@* "}"`
	Limit    *int             `( "LIMIT" @Int )?`
	Offset   *int             `( "OFFSET" @Int )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type prefixDecl struct {
	Name string `"PREFIX" @PNameNS`
	IRI  string `@IRI`
}

//nolint:govet // participle grammar tags are not standard struct tags
type patternClause struct {
	S *termNode `@@`
	P *termNode `@@`
	O *termNode `@@ "."?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type termNode struct {
	Var     *string      `  @Var`
	IRI     *string      `| @IRI`
	PName   *string      `| @PName`
	A       bool         `| @"a"`
	Int     *string      `| @Int`
	Literal *literalNode `| @@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type literalNode struct {
	Value     string  `@String`
	Lang      *string `( @LangTag`
	TypeIRI   *string `| "^^" ( @IRI`
	TypePName *string `       | @PName ) )?`
}

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Var", Pattern: `[?$][A-Za-z_][A-Za-z0-9_]*`},
	{Name: "IRI", Pattern: `<[^<>"{}|^\x60\\\s]*>`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "LangTag", Pattern: `@[A-Za-z]+(-[A-Za-z0-9]+)*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "PName", Pattern: `[A-Za-z][A-Za-z0-9_-]*:[A-Za-z0-9_]([A-Za-z0-9_.-]*[A-Za-z0-9_-])?`},
	{Name: "PNameNS", Pattern: `[A-Za-z][A-Za-z0-9_-]*:`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `\^\^|[{}.*]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var queryParser = participle.MustBuild[selectGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.CaseInsensitive("Ident"),
	participle.UseLookahead(2),
)

// Parse parses query text into a validated Select. Prefixed names resolve
// against the built-in prefixes (belv, dcterms, rdf, rdfs, skos, xsd) and
// any PREFIX declarations in the text.
func Parse(text string) (Select, error) {
	ast, err := queryParser.ParseString("", text)
	if err != nil {
		return Select{}, &errors.ParseError{Format: "query", Message: err.Error(), Err: err}
	}

	prefixes := make(map[string]string, len(rdf.Prefixes)+len(ast.Prefixes))
	for k, v := range rdf.Prefixes {
		prefixes[k] = v
	}
	for _, p := range ast.Prefixes {
		prefixes[strings.TrimSuffix(p.Name, ":")] = unbracket(p.IRI)
	}

	var q Select
	for _, v := range ast.Vars {
		q.Vars = append(q.Vars, v[1:])
	}
	for _, clause := range ast.Where {
		var p Pattern
		for _, slot := range []struct {
			dst  *Term
			node *termNode
		}{{&p.S, clause.S}, {&p.P, clause.P}, {&p.O, clause.O}} {
			t, err := slot.node.term(prefixes)
			if err != nil {
				return Select{}, err
			}
			*slot.dst = t
		}
		q.Where = append(q.Where, p)
	}
	if ast.Limit != nil {
		q.Limit = *ast.Limit
	}
	if ast.Offset != nil {
		q.Offset = *ast.Offset
	}

	if err := q.Validate(); err != nil {
		return Select{}, err
	}
	return q, nil
}

func (n *termNode) term(prefixes map[string]string) (Term, error) {
	switch {
	case n.Var != nil:
		return Var((*n.Var)[1:]), nil
	case n.IRI != nil:
		return IRI(unbracket(*n.IRI)), nil
	case n.PName != nil:
		iri, err := expand(*n.PName, prefixes)
		if err != nil {
			return Term{}, err
		}
		return IRI(iri), nil
	case n.A:
		return IRI(rdf.RDFType), nil
	case n.Int != nil:
		if _, err := strconv.Atoi(*n.Int); err != nil {
			return Term{}, errors.NewParse("query", "", "invalid integer "+*n.Int)
		}
		return Node(rdf.TypedLiteral(*n.Int, rdf.XSD+"integer")), nil
	case n.Literal != nil:
		lit := n.Literal
		switch {
		case lit.Lang != nil:
			return Node(rdf.LangLiteral(lit.Value, (*lit.Lang)[1:])), nil
		case lit.TypeIRI != nil:
			return Node(rdf.TypedLiteral(lit.Value, unbracket(*lit.TypeIRI))), nil
		case lit.TypePName != nil:
			dt, err := expand(*lit.TypePName, prefixes)
			if err != nil {
				return Term{}, err
			}
			return Node(rdf.TypedLiteral(lit.Value, dt)), nil
		}
		return Literal(lit.Value), nil
	}
	return Term{}, errors.NewParse("query", "", "empty term")
}

func expand(pname string, prefixes map[string]string) (string, error) {
	prefix, local, _ := strings.Cut(pname, ":")
	ns, ok := prefixes[prefix]
	if !ok {
		return "", errors.NewParse("query", "", "unknown prefix "+strconv.Quote(prefix))
	}
	return ns + local, nil
}

func unbracket(iri string) string {
	return strings.TrimSuffix(strings.TrimPrefix(iri, "<"), ">")
}
