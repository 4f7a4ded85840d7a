package rdfio

import (
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/openbel/reggie/core/errors"
	"github.com/openbel/reggie/core/rdf"
)

const xmlNS = "http://www.w3.org/XML/1998/namespace"

var rdfRoot = xpath.MustCompile("/*[local-name()='RDF']")

// xmlReader turns the striped RDF/XML syntax into triples. It handles node
// elements identified by rdf:about or rdf:nodeID (anonymous otherwise),
// typed node elements, property attributes, property elements carrying
// rdf:resource or rdf:nodeID, nested node elements and literal text with
// xml:lang and rdf:datatype. Containers, collections, reification and
// rdf:parseType are rejected.
type xmlReader struct {
	out    []rdf.Triple
	blanks int
}

func parseRDFXML(r io.Reader) ([]rdf.Triple, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, &errors.ParseError{Format: "RDF/XML", Message: err.Error(), Err: err}
	}

	root := xmlquery.QuerySelector(doc, rdfRoot)
	if root == nil || root.NamespaceURI != rdf.RDFNS {
		return nil, errors.NewParse("RDF/XML", "", "no rdf:RDF root element")
	}

	x := &xmlReader{}
	lang, _ := lookupAttr(root, xmlNS, "lang")
	for _, n := range elements(root) {
		if _, err := x.node(n, lang); err != nil {
			return nil, err
		}
	}
	return x.out, nil
}

// node reads a node element and returns its subject.
func (x *xmlReader) node(n *xmlquery.Node, lang string) (rdf.Term, error) {
	if l, ok := lookupAttr(n, xmlNS, "lang"); ok {
		lang = l
	}

	var subject rdf.Term
	switch {
	case attrNS(n, rdf.RDFNS, "about") != "":
		subject = rdf.IRI(attrNS(n, rdf.RDFNS, "about"))
	case attrNS(n, rdf.RDFNS, "nodeID") != "":
		subject = rdf.Blank("_:" + attrNS(n, rdf.RDFNS, "nodeID"))
	default:
		subject = x.blank()
	}

	if !(n.NamespaceURI == rdf.RDFNS && n.Data == "Description") {
		x.emit(subject, rdf.IRI(rdf.RDFType), rdf.IRI(n.NamespaceURI+n.Data))
	}

	for _, a := range n.Attr {
		ns := a.NamespaceURI
		if ns == rdf.RDFNS || ns == xmlNS || isNamespaceDecl(a) {
			if ns == rdf.RDFNS && a.Name.Local == "type" {
				x.emit(subject, rdf.IRI(rdf.RDFType), rdf.IRI(a.Value))
			}
			continue
		}
		if ns == "" {
			continue
		}
		x.emit(subject, rdf.IRI(ns+a.Name.Local), literal(a.Value, "", lang))
	}

	for _, p := range elements(n) {
		if err := x.property(subject, p, lang); err != nil {
			return nil, err
		}
	}
	return subject, nil
}

func (x *xmlReader) property(subject rdf.Term, p *xmlquery.Node, lang string) error {
	if p.NamespaceURI == "" {
		return errors.NewParse("RDF/XML", "", "property element "+p.Data+" has no namespace")
	}
	if p.NamespaceURI == rdf.RDFNS && (p.Data == "li" || strings.HasPrefix(p.Data, "_")) {
		return errors.NewUnsupported("RDF/XML", "container membership property rdf:"+p.Data)
	}
	if attrNS(p, rdf.RDFNS, "parseType") != "" {
		return errors.NewUnsupported("RDF/XML", "rdf:parseType on "+p.Data)
	}
	if l, ok := lookupAttr(p, xmlNS, "lang"); ok {
		lang = l
	}
	predicate := rdf.IRI(p.NamespaceURI + p.Data)

	if res := attrNS(p, rdf.RDFNS, "resource"); res != "" {
		x.emit(subject, predicate, rdf.IRI(res))
		return nil
	}
	if id := attrNS(p, rdf.RDFNS, "nodeID"); id != "" {
		x.emit(subject, predicate, rdf.Blank("_:"+id))
		return nil
	}

	if children := elements(p); len(children) > 0 {
		if len(children) > 1 {
			return errors.NewParse("RDF/XML", "", "property element "+p.Data+" has more than one node element")
		}
		object, err := x.node(children[0], lang)
		if err != nil {
			return err
		}
		x.emit(subject, predicate, object)
		return nil
	}

	x.emit(subject, predicate, literal(p.InnerText(), attrNS(p, rdf.RDFNS, "datatype"), lang))
	return nil
}

func (x *xmlReader) emit(s, p, o rdf.Term) {
	x.out = append(x.out, rdf.NewTriple(s, p, o))
}

func (x *xmlReader) blank() rdf.Term {
	x.blanks++
	return rdf.Blank("_:x" + strconv.Itoa(x.blanks))
}

func literal(v, datatype, lang string) rdf.Term {
	switch {
	case datatype != "":
		return rdf.TypedLiteral(v, datatype)
	case lang != "":
		return rdf.LangLiteral(v, lang)
	}
	return rdf.Literal(v)
}

func isNamespaceDecl(a xmlquery.Attr) bool {
	return a.Name.Space == "xmlns" || a.NamespaceURI == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

func attrNS(n *xmlquery.Node, ns, local string) string {
	v, _ := lookupAttr(n, ns, local)
	return v
}

func lookupAttr(n *xmlquery.Node, ns, local string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == local && a.NamespaceURI == ns {
			return a.Value, true
		}
	}
	return "", false
}

func elements(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}
