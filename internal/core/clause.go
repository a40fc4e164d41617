// Package core implements the statement assembly engine for sqlstr: clause
// buckets, the parameter table, subquery merging, and raw/compiled rendering.
package core

import "strings"

// ClauseKind identifies one of the closed set of statement clauses.
// The declaration order below is the canonical render order: no matter in
// which order the caller opens clauses, the assembled statement always reads
// WITH ... SELECT ... FROM ... WHERE ... and so on.
type ClauseKind int

const (
	ClauseWith ClauseKind = iota
	ClauseSelect
	ClauseSelectDistinct
	ClauseCall
	ClauseFrom
	ClauseWhere
	ClauseGroupBy
	ClauseHaving
	ClauseOrderBy
	ClauseOffset
	ClauseLimit

	clauseKindCount
)

// clauseSpec pins the render keyword and the intra-clause token delimiter for
// one clause kind. Multi-word keywords live here instead of per-kind methods.
type clauseSpec struct {
	keyword   string
	delimiter string
}

var clauseSpecs = [clauseKindCount]clauseSpec{
	ClauseWith:           {"WITH", " , "},
	ClauseSelect:         {"SELECT", " , "},
	ClauseSelectDistinct: {"SELECT DISTINCT", " , "},
	ClauseCall:           {"CALL", " "},
	ClauseFrom:           {"FROM", " "},
	ClauseWhere:          {"WHERE", " "},
	ClauseGroupBy:        {"GROUP BY", " , "},
	ClauseHaving:         {"HAVING", " "},
	ClauseOrderBy:        {"ORDER BY", " , "},
	ClauseOffset:         {"OFFSET", " "},
	ClauseLimit:          {"LIMIT", " "},
}

// Keyword returns the SQL keyword rendered in front of the clause's tokens.
func (k ClauseKind) Keyword() string {
	return clauseSpecs[k].keyword
}

// Delimiter returns the string joining the tokens inside the clause.
func (k ClauseKind) Delimiter() string {
	return clauseSpecs[k].delimiter
}

// Statement keywords appended inside clause buckets. Kept as a lookup of
// render strings; the two-word forms are the reason this is not just inlined
// at the call sites.
const (
	kwInnerJoin = "INNER JOIN"
	kwOuterJoin = "OUTER JOIN"
	kwLeftJoin  = "LEFT JOIN"
	kwRightJoin = "RIGHT JOIN"
	kwCrossJoin = "CROSS JOIN"
	kwOn        = "ON"
	kwUsing     = "USING"
	kwAnd       = "AND"
	kwOr        = "OR"
	kwBetween   = "BETWEEN"
	kwExists    = "EXISTS"
	kwNot       = "NOT"
	kwIn        = "IN"
	kwLike      = "LIKE"
	kwEqual     = "="
	kwGreater   = ">"
	kwGreaterEq = ">="
	kwLess      = "<"
	kwLessEq    = "<="
	kwIsNull    = "IS NULL"
	kwIsNotNull = "IS NOT NULL"
	kwAsc       = "ASC"
	kwDesc      = "DESC"
)

// buildRaw concatenates the populated clause buckets in canonical order.
// Each clause renders as its keyword followed by the bucket's tokens joined
// by the clause delimiter; clauses are joined by single spaces.
//
// The trailing fix-up removes the delimiter artifact left in front of a
// direction keyword: ASC/DESC are appended through the explicit ORDER BY
// path after the bucket's `, ` delimiter has already fired, leaving
// `... , DESC`.
func (b *Builder) buildRaw() string {
	parts := make([]string, 0, 2*len(b.blocks))
	for kind := ClauseKind(0); kind < clauseKindCount; kind++ {
		tokens, ok := b.blocks[kind]
		if !ok {
			continue
		}
		parts = append(parts, kind.Keyword())
		if len(tokens) > 0 {
			parts = append(parts, strings.Join(tokens, kind.Delimiter()))
		}
	}

	raw := strings.Join(parts, " ")
	raw = strings.ReplaceAll(raw, " , DESC", " DESC")
	raw = strings.ReplaceAll(raw, " , ASC", " ASC")
	return raw
}
