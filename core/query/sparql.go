package query

import (
	"strconv"
	"strings"
)

// SPARQL renders q as SPARQL 1.1 query text. Concrete terms are written in
// full IRI or escaped literal form, so no PREFIX declarations are needed.
func (q Select) SPARQL() string {
	var b strings.Builder
	b.WriteString("SELECT")
	for _, v := range q.Projection() {
		b.WriteString(" ?")
		b.WriteString(v)
	}
	b.WriteString(" WHERE {\n")
	for _, p := range q.Where {
		b.WriteString("  ")
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	b.WriteString("}")
	if q.Limit > 0 {
		b.WriteString("\nLIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		b.WriteString("\nOFFSET ")
		b.WriteString(strconv.Itoa(q.Offset))
	}
	return b.String()
}

func (q Select) String() string { return q.SPARQL() }
