package sqlite

import (
	"fmt"
	"strings"

	"github.com/openbel/reggie/core/query"
	"github.com/openbel/reggie/core/rdf"
)

// column describes where one pattern position lives in the triples table.
type column struct {
	value string
	kind  string
	dt    string
	lang  string
}

func position(alias, pos string) column {
	switch pos {
	case "s":
		return column{value: alias + ".s", kind: alias + ".s_kind", dt: "''", lang: "''"}
	case "p":
		return column{value: alias + ".p", kind: fmt.Sprint(int(rdf.KindIRI)), dt: "''", lang: "''"}
	}
	return column{value: alias + ".o", kind: alias + ".o_kind", dt: alias + ".o_dt", lang: alias + ".o_lang"}
}

type compiled struct {
	sql  string
	args []any
	vars []string
}

// compile translates q into a SELECT over the triples table. Rows are
// ordered by the insertion sequence of each pattern's row so that LIMIT and
// OFFSET page through a stable order.
func compile(q query.Select) compiled {
	var (
		from  []string
		where []string
		order []string
		args  []any
		first = map[string]column{}
	)

	for i, p := range q.Where {
		alias := fmt.Sprintf("t%d", i)
		from = append(from, "triples "+alias)
		order = append(order, alias+".seq")

		for _, slot := range []struct {
			pos  string
			term query.Term
		}{{"s", p.S}, {"p", p.P}, {"o", p.O}} {
			col := position(alias, slot.pos)
			if slot.term.IsVar() {
				prev, seen := first[slot.term.Var]
				if !seen {
					first[slot.term.Var] = col
					continue
				}
				where = append(where,
					col.value+" = "+prev.value,
					col.kind+" = "+prev.kind,
					col.dt+" = "+prev.dt,
					col.lang+" = "+prev.lang,
				)
				continue
			}

			value, kind, dt, lang := rdf.Columns(slot.term.Value)
			where = append(where, col.value+" = ?")
			args = append(args, value)
			if slot.pos == "p" {
				continue
			}
			where = append(where, col.kind+" = ?")
			args = append(args, int(kind))
			if slot.pos == "o" {
				where = append(where, col.dt+" = ?", col.lang+" = ?")
				args = append(args, dt, lang)
			}
		}
	}

	vars := q.Projection()
	var sel []string
	for _, v := range vars {
		col := first[v]
		sel = append(sel, col.value, col.kind, col.dt, col.lang)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(sel, ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.Join(from, ", "))
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(order, ", "))

	switch {
	case q.Limit > 0:
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Limit, q.Offset)
	case q.Offset > 0:
		b.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, q.Offset)
	}

	return compiled{sql: b.String(), args: args, vars: vars}
}
