package core

import (
	"fmt"
	"strings"
)

// Token formatting: pure helpers with no builder state. Everything here is
// deterministic string shaping; parameter bookkeeping never happens at this
// layer.

var specialChars = strings.NewReplacer(`'`, `\'`, `"`, `\"`)

// escapeSpecials backslash-escapes quote characters inside a literal.
func escapeSpecials(s string) string {
	return specialChars.Replace(s)
}

// quoteSingle wraps s in single quotes unless it already is.
func quoteSingle(s string) string {
	if strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return s
	}
	return "'" + s + "'"
}

// quoteDouble wraps s in double quotes unless it already is. The `*`
// wildcard passes through unquoted.
func quoteDouble(s string) string {
	if s == "*" || (strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)) {
		return s
	}
	return `"` + s + `"`
}

// qualify renders a dotted, double-quoted qualifier.identifier pair.
func qualify(qualifier, identifier string) string {
	return quoteDouble(qualifier) + "." + quoteDouble(identifier)
}

// aliasPrefix renders the prefix alias form used by CTEs: "alias" AS expr.
// No-op for an empty alias.
func aliasPrefix(expr, alias string) string {
	if alias == "" {
		return expr
	}
	return quoteDouble(alias) + " AS " + expr
}

// aliasSuffix renders the suffix alias form: expr AS "alias".
// No-op for an empty alias.
func aliasSuffix(expr, alias string) string {
	if alias == "" {
		return expr
	}
	return expr + " AS " + quoteDouble(alias)
}

// castExpr renders an explicit type cast.
func castExpr(value, typ string) string {
	return "CAST( " + value + " AS " + typ + " )"
}

// parens wraps an expression in spaced parentheses.
func parens(s string) string {
	return "( " + s + " )"
}

// callExpr renders a function or procedure call. Arguments join with the
// clause-style ` , ` delimiter inside spaced parentheses; distinct injects
// the aggregate DISTINCT marker in front of the argument list.
func callExpr(name string, distinct bool, args []string) string {
	marker := ""
	if distinct {
		marker = "DISTINCT "
	}
	return name + "( " + marker + strings.Join(args, " , ") + " )"
}

var prettifier = strings.NewReplacer(
	"$$", "$",
	"$?", "$",
	" , ", ", ",
	"( ", "(",
	" )", ")",
)

// prettify collapses the internal placeholder markers to a single display
// character and tightens whitespace for human reading. Strictly cosmetic:
// compilation always runs on the unprettified token stream.
func prettify(s string) string {
	return prettifier.Replace(s)
}

// Identifier renders a double-quoted SQL identifier, prepending the given
// qualifiers in order: Identifier("col", "schema", "table") yields
// "schema"."table"."col". Values are stringified with fmt.
func Identifier(identifier any, qualifiers ...any) string {
	parts := make([]string, 0, len(qualifiers)+1)
	for _, q := range qualifiers {
		parts = append(parts, quoteDouble(escapeSpecials(fmt.Sprint(q))))
	}
	parts = append(parts, quoteDouble(escapeSpecials(fmt.Sprint(identifier))))
	return strings.Join(parts, ".")
}

// Varchar renders a single-quoted TEXT value with an explicit cast.
func Varchar(value any) string {
	return castExpr(quoteSingle(escapeSpecials(fmt.Sprint(value))), "TEXT")
}

// Cast wraps a value in an explicit CAST to the given type.
func Cast(value any, typ string) string {
	return castExpr(fmt.Sprint(value), typ)
}

// Block wraps a statement fragment in parentheses.
func Block(block any) string {
	return parens(fmt.Sprint(block))
}
