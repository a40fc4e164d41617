package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/sqlstr/internal/logger"
	"github.com/coregx/sqlstr/internal/tracer"
)

// Builder accumulates typed SQL fragments into clause buckets and renders
// them into a single statement. It owns one clause registry, one parameter
// table (created lazily on first placeholder use), a cached raw string, a
// cached compiled string, and a dirty flag.
//
// Rendering is lazy and cached; every mutation invalidates the raw cache and
// marks the compiled cache dirty. Builders are not safe for concurrent use;
// callers serialize access externally.
type Builder struct {
	blocks     map[ClauseKind][]string
	current    ClauseKind
	hasCurrent bool

	params *paramTable

	raw      string
	compiled string
	dirty    bool

	err error // first fluent-chain misuse, sticky

	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	ctx       context.Context
}

// Option is a functional option for configuring a Builder.
type Option func(*Builder)

// WithLogger enables structured logging of build and compile events.
// Injected parameter values are masked by the sanitizer before logging.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithTracer enables tracing of compile operations.
func WithTracer(t tracer.Tracer) Option {
	return func(b *Builder) {
		b.tracer = t
	}
}

// WithContext sets the context used as the parent for tracing spans.
func WithContext(ctx context.Context) Option {
	return func(b *Builder) {
		b.ctx = ctx
	}
}

// New creates an empty Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		blocks:    make(map[ClauseKind][]string),
		dirty:     true,
		sanitizer: logger.NewSanitizer(nil),
		tracer:    &tracer.NoopTracer{},
		ctx:       context.Background(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Err returns the first misuse error recorded by the fluent chain, if any.
// Compile also fails with this error.
func (b *Builder) Err() error {
	return b.err
}

// invalidate drops the cached raw render and marks the compiled cache dirty.
func (b *Builder) invalidate() {
	b.raw = ""
	b.dirty = true
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// open creates (or replaces) the bucket for kind and makes it current.
func (b *Builder) open(kind ClauseKind) *Builder {
	b.invalidate()
	b.current = kind
	b.hasCurrent = true
	b.blocks[kind] = []string{}
	return b
}

// add appends tokens to the current bucket. With no clause open the tokens
// are dropped and a sticky invalid-state error is recorded.
func (b *Builder) add(tokens ...string) *Builder {
	if !b.hasCurrent {
		return b.fail(WrapError(ErrNoOpenClause, strings.Join(tokens, " ")))
	}
	b.invalidate()
	b.blocks[b.current] = append(b.blocks[b.current], tokens...)
	return b
}

// addTo appends tokens to the bucket for kind and makes it current, letting
// clauses like FROM receive JOIN/ON/USING fragments after other clauses have
// been opened in between. The bucket must have been initialized.
func (b *Builder) addTo(kind ClauseKind, tokens ...string) *Builder {
	if _, ok := b.blocks[kind]; !ok {
		return b.fail(WrapError(ErrNoOpenClause, kind.Keyword()+" not opened"))
	}
	b.current = kind
	b.hasCurrent = true
	return b.add(tokens...)
}

// Clause initializers.

// With opens the WITH clause.
func (b *Builder) With() *Builder { return b.open(ClauseWith) }

// Select opens the SELECT clause.
func (b *Builder) Select() *Builder { return b.open(ClauseSelect) }

// SelectDistinct opens the SELECT DISTINCT clause.
func (b *Builder) SelectDistinct() *Builder { return b.open(ClauseSelectDistinct) }

// Call opens the CALL clause for procedure invocation.
func (b *Builder) Call() *Builder { return b.open(ClauseCall) }

// From opens the FROM clause.
func (b *Builder) From() *Builder { return b.open(ClauseFrom) }

// Where opens the WHERE clause.
func (b *Builder) Where() *Builder { return b.open(ClauseWhere) }

// GroupBy opens the GROUP BY clause.
func (b *Builder) GroupBy() *Builder { return b.open(ClauseGroupBy) }

// Having opens the HAVING clause.
func (b *Builder) Having() *Builder { return b.open(ClauseHaving) }

// OrderBy opens the ORDER BY clause.
func (b *Builder) OrderBy() *Builder { return b.open(ClauseOrderBy) }

// Offset opens the OFFSET clause with the given row offset.
func (b *Builder) Offset(offset int) *Builder {
	return b.open(ClauseOffset).add(strconv.Itoa(offset))
}

// Limit opens the LIMIT clause with the given row limit.
func (b *Builder) Limit(limit int) *Builder {
	return b.open(ClauseLimit).add(strconv.Itoa(limit))
}

// Clause continuations.

// CTE embeds a common table expression into the WITH clause, alias-prefixed:
// "alias" AS ( ... ). The cte builder's parameters merge into this builder.
func (b *Builder) CTE(cte *Builder, alias string) *Builder {
	return b.add(aliasPrefix(parens(b.mergeSubquery(cte)), alias))
}

// InnerJoin appends INNER JOIN to the FROM clause and makes it current.
func (b *Builder) InnerJoin() *Builder { return b.addTo(ClauseFrom, kwInnerJoin) }

// OuterJoin appends OUTER JOIN to the FROM clause and makes it current.
func (b *Builder) OuterJoin() *Builder { return b.addTo(ClauseFrom, kwOuterJoin) }

// LeftJoin appends LEFT JOIN to the FROM clause and makes it current.
func (b *Builder) LeftJoin() *Builder { return b.addTo(ClauseFrom, kwLeftJoin) }

// RightJoin appends RIGHT JOIN to the FROM clause and makes it current.
func (b *Builder) RightJoin() *Builder { return b.addTo(ClauseFrom, kwRightJoin) }

// CrossJoin appends CROSS JOIN to the FROM clause and makes it current.
func (b *Builder) CrossJoin() *Builder { return b.addTo(ClauseFrom, kwCrossJoin) }

// On appends ON to the FROM clause and makes it current.
func (b *Builder) On() *Builder { return b.addTo(ClauseFrom, kwOn) }

// Using appends a USING ( col , ... ) join condition to the FROM clause.
// Column names are passed through unmodified.
func (b *Builder) Using(columns ...string) *Builder {
	b.addTo(ClauseFrom, kwUsing, "(")
	for i, column := range columns {
		b.add(column)
		if i < len(columns)-1 {
			b.add(",")
		}
	}
	return b.add(")")
}

// Logical and set operators.

// Not appends NOT.
func (b *Builder) Not() *Builder { return b.add(kwNot) }

// And appends AND.
func (b *Builder) And() *Builder { return b.add(kwAnd) }

// Or appends OR.
func (b *Builder) Or() *Builder { return b.add(kwOr) }

// Between appends BETWEEN.
func (b *Builder) Between() *Builder { return b.add(kwBetween) }

// Like appends LIKE.
func (b *Builder) Like() *Builder { return b.add(kwLike) }

// Exists appends an EXISTS ( ... ) predicate over an embedded subquery.
func (b *Builder) Exists(sub *Builder) *Builder {
	return b.add(kwExists).SubQuery(sub, "")
}

// InQuery appends an IN ( ... ) predicate over an embedded subquery.
func (b *Builder) InQuery(sub *Builder) *Builder {
	return b.add(kwIn).SubQuery(sub, "")
}

// In appends an IN ( ... ) group holding count fresh ordinal placeholders,
// consuming count parameter slots.
func (b *Builder) In(count int) *Builder {
	b.add(kwIn, "(")
	for i := 0; i < count; i++ {
		b.Param()
		if i < count-1 {
			b.add(",")
		}
	}
	return b.add(")")
}

// InNamed appends an IN ( ... ) group holding one named placeholder per
// reference.
func (b *Builder) InNamed(references ...any) *Builder {
	b.add(kwIn, "(")
	for i, reference := range references {
		b.NamedParam(reference)
		if i < len(references)-1 {
			b.add(",")
		}
	}
	return b.add(")")
}

// Comparison operators.

// Equals appends =.
func (b *Builder) Equals() *Builder { return b.add(kwEqual) }

// GreaterThan appends >.
func (b *Builder) GreaterThan() *Builder { return b.add(kwGreater) }

// GreaterThanOrEquals appends >=.
func (b *Builder) GreaterThanOrEquals() *Builder { return b.add(kwGreaterEq) }

// LessThan appends <.
func (b *Builder) LessThan() *Builder { return b.add(kwLess) }

// LessThanOrEquals appends <=.
func (b *Builder) LessThanOrEquals() *Builder { return b.add(kwLessEq) }

// IsNull appends IS NULL.
func (b *Builder) IsNull() *Builder { return b.add(kwIsNull) }

// IsNotNull appends IS NOT NULL.
func (b *Builder) IsNotNull() *Builder { return b.add(kwIsNotNull) }

// Ordering.

// Asc appends ASC to the ORDER BY clause and makes it current.
func (b *Builder) Asc() *Builder { return b.addTo(ClauseOrderBy, kwAsc) }

// Desc appends DESC to the ORDER BY clause and makes it current.
func (b *Builder) Desc() *Builder { return b.addTo(ClauseOrderBy, kwDesc) }

// Value injection.

// Scalar appends a scalar value. Strings are single-quoted with special
// characters escaped; everything else is stringified as-is.
func (b *Builder) Scalar(value any) *Builder {
	if s, ok := value.(string); ok {
		return b.add(quoteSingle(escapeSpecials(s)))
	}
	return b.add(fmt.Sprint(value))
}

// Ordinal appends a plain ordinal number, for example a GROUP BY position.
func (b *Builder) Ordinal(ordinal int) *Builder {
	return b.add(strconv.Itoa(ordinal))
}

// Object injection.

// Column appends a double-quoted column identifier. Accepts one to three
// arguments: (column), (qualifier, column), or (qualifier, column, alias).
func (b *Builder) Column(parts ...string) *Builder {
	switch len(parts) {
	case 1:
		return b.add(quoteDouble(parts[0]))
	case 2:
		return b.add(qualify(parts[0], parts[1]))
	case 3:
		return b.add(aliasSuffix(qualify(parts[0], parts[1]), parts[2]))
	default:
		return b.fail(fmt.Errorf("Column expects 1 to 3 arguments, got %d", len(parts)))
	}
}

// ColumnCast appends a column identifier wrapped in an explicit CAST.
// Accepts (column, type), (qualifier, column, type), or
// (qualifier, column, alias, type).
func (b *Builder) ColumnCast(parts ...string) *Builder {
	switch len(parts) {
	case 2:
		return b.add(castExpr(quoteDouble(parts[0]), parts[1]))
	case 3:
		return b.add(castExpr(qualify(parts[0], parts[1]), parts[2]))
	case 4:
		return b.add(aliasSuffix(castExpr(qualify(parts[0], parts[1]), parts[3]), parts[2]))
	default:
		return b.fail(fmt.Errorf("ColumnCast expects 2 to 4 arguments, got %d", len(parts)))
	}
}

// Columns appends a *-selection, optionally table-qualified.
func (b *Builder) Columns(qualifier ...string) *Builder {
	switch len(qualifier) {
	case 0:
		return b.add("*")
	case 1:
		return b.add(qualify(qualifier[0], "*"))
	default:
		return b.fail(fmt.Errorf("Columns expects at most 1 qualifier, got %d", len(qualifier)))
	}
}

// Table appends a schema-qualified table identifier, with an optional alias.
func (b *Builder) Table(schema, table string, alias ...string) *Builder {
	name := ""
	if len(alias) > 0 {
		name = alias[0]
	}
	return b.add(aliasSuffix(qualify(schema, table), name))
}

// SubQuery embeds another builder as an aliased, parenthesized subquery.
// The subquery's parameters merge into this builder: its ordinal
// placeholders renumber to follow this builder's, named placeholders keep
// their references. The embed is a snapshot; mutating sub afterwards does
// not affect this builder.
func (b *Builder) SubQuery(sub *Builder, alias string) *Builder {
	return b.add(aliasSuffix(parens(b.mergeSubquery(sub)), alias))
}

// Raw appends an unmodified string literal, for everything the API does not
// cover.
func (b *Builder) Raw(raw string) *Builder {
	return b.add(raw)
}

// Function call injection.

// VoidProcedure appends a procedure call with the given arguments.
func (b *Builder) VoidProcedure(procedure string, arguments ...any) *Builder {
	return b.add(callExpr(procedure, false, stringifyArgs(arguments)))
}

// ScalarFunction appends an aliased scalar function call.
func (b *Builder) ScalarFunction(function, alias string, arguments ...any) *Builder {
	return b.add(aliasSuffix(callExpr(function, false, stringifyArgs(arguments)), alias))
}

// ScalarFunctionCast appends an aliased scalar function call wrapped in a
// CAST to the given type.
func (b *Builder) ScalarFunctionCast(function, alias, typ string, arguments ...string) *Builder {
	return b.add(aliasSuffix(castExpr(callExpr(function, false, arguments), typ), alias))
}

// AggFunction appends an aliased aggregate function call with an optional
// DISTINCT marker.
func (b *Builder) AggFunction(function, alias string, distinct bool, argument string) *Builder {
	return b.add(aliasSuffix(callExpr(function, distinct, []string{argument}), alias))
}

// AggFunctionCast appends an aliased aggregate function call wrapped in a
// CAST to the given type.
func (b *Builder) AggFunctionCast(function, alias, typ string, distinct bool, argument string) *Builder {
	return b.add(aliasSuffix(castExpr(callExpr(function, distinct, []string{argument}), typ), alias))
}

func stringifyArgs(arguments []any) []string {
	args := make([]string, len(arguments))
	for i, argument := range arguments {
		args[i] = fmt.Sprint(argument)
	}
	return args
}

// Parameter injection.

// addParam allocates the next parameter slot under the given reference
// token and appends the token to the current clause.
func (b *Builder) addParam(reference string) *Builder {
	if !b.hasCurrent {
		return b.fail(WrapError(ErrNoOpenClause, prettify(reference)))
	}
	if b.params == nil {
		b.params = newParamTable()
	}
	b.invalidate()
	b.blocks[b.current] = append(b.blocks[b.current], b.params.addSlot(reference))
	return b
}

// Param appends an ordinal parameter placeholder. Ordinals increment once
// per call and can be addressed by their number in SetParam.
func (b *Builder) Param() *Builder {
	if b.params == nil {
		b.params = newParamTable()
	}
	b.params.ordinal++
	return b.addParam(ordinalToken(b.params.ordinal))
}

// NamedParam appends a parameter placeholder addressable by the given
// reference in SetParam. Reusing a reference binds one value to every
// placeholder declared under it.
func (b *Builder) NamedParam(reference any) *Builder {
	return b.addParam(namedToken(reference))
}

// SetParam injects a value for every slot bound to the given reference.
// Integer references address ordinal placeholders; everything else
// addresses named placeholders.
func (b *Builder) SetParam(reference, value any) error {
	token := namedToken(reference)
	if n, ok := reference.(int); ok {
		token = ordinalToken(n)
	}

	if b.params == nil {
		return WrapError(ErrReferenceNotFound, "reference "+prettify(token))
	}
	if err := b.params.set(token, value); err != nil {
		return err
	}

	b.dirty = true
	return nil
}

// SetParams clears all stored injections, then assigns values strictly by
// placeholder position: the first placeholder in the statement receives the
// first value, and so on. Fewer values than slots leaves the tail unset;
// more values than slots is an error.
func (b *Builder) SetParams(values ...any) error {
	if b.params == nil {
		if len(values) == 0 {
			return nil
		}
		return WrapError(ErrTooManyValues, fmt.Sprintf("%d values for 0 slots", len(values)))
	}
	if err := b.params.setPositional(values...); err != nil {
		return err
	}

	b.dirty = true
	return nil
}

// ClearParams removes all stored injection values. Slot and reference
// structure is unchanged.
func (b *Builder) ClearParams() *Builder {
	if b.params != nil {
		b.params.clear()
		b.dirty = true
	}
	return b
}

// Output.

// rawStatement returns the cached raw render, rebuilding it when a mutation
// has invalidated the cache.
func (b *Builder) rawStatement() string {
	if b.raw == "" {
		b.raw = b.buildRaw()
		if b.logger != nil {
			b.logger.Debug("statement built", "sql", b.raw, "clauses", len(b.blocks))
		}
	}
	return b.raw
}

// SQL returns the raw statement with parameter markers still present.
func (b *Builder) SQL() string {
	return b.rawStatement()
}

// PrettySQL returns the raw statement with markers collapsed to a single $
// and whitespace tightened for human reading. Cosmetic only; compilation
// never runs on the prettified form.
func (b *Builder) PrettySQL() string {
	return prettify(b.rawStatement())
}

// String implements fmt.Stringer and returns the raw statement.
func (b *Builder) String() string {
	return b.rawStatement()
}

// Compile returns the statement with every placeholder replaced by its
// injected value. The result is cached until the builder is mutated or an
// injection changes; a failed compile leaves the previous compiled cache
// untouched and the dirty flag set.
func (b *Builder) Compile() (string, error) {
	return b.compileStatement(false)
}

// CompilePretty is Compile with the cosmetic whitespace pass applied.
func (b *Builder) CompilePretty() (string, error) {
	return b.compileStatement(true)
}

func (b *Builder) compileStatement(pretty bool) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if b.dirty || b.compiled == "" {
		if err := b.recompile(); err != nil {
			return "", err
		}
	}
	if pretty {
		return prettify(b.compiled), nil
	}
	return b.compiled, nil
}

// recompile substitutes injected values for placeholder tokens in token
// order, walking the raw statement split on single spaces.
func (b *Builder) recompile() error {
	_, span := b.tracer.StartSpan(b.ctx, "sqlstr.compile")
	defer span.End()

	raw := b.rawStatement()
	compiled := raw
	count := 0
	if b.params != nil {
		count = b.params.count
	}

	err := func() error {
		if b.params == nil || len(b.params.injections) == 0 {
			return nil
		}

		parts := strings.Split(raw, " ")
		position := -1
		for i, part := range parts {
			if !isPlaceholder(part) {
				continue
			}
			position++
			if position >= count {
				return WrapError(ErrPositionOutOfBounds,
					fmt.Sprintf("position %d with size %d", position, count))
			}
			value, ok := b.params.injections[position].(string)
			if !ok {
				return WrapError(ErrMissingValue, "parameter "+prettify(part))
			}
			parts[i] = value
		}

		compiled = strings.Join(parts, " ")
		return nil
	}()

	tracer.AddStatementAttributes(span, &tracer.StatementMetadata{
		Raw:            raw,
		Operation:      tracer.DetectOperation(raw),
		ParameterCount: count,
		Error:          err,
	})

	if err != nil {
		if b.logger != nil {
			b.logger.Error("statement compile failed", "error", err, "sql", raw)
		}
		return err
	}

	b.compiled = compiled
	b.dirty = false
	if b.logger != nil {
		values := []any(nil)
		if b.params != nil {
			values = b.sanitizer.MaskValues(raw, b.params.injections)
		}
		b.logger.Debug("statement compiled", "sql", raw, "values", b.sanitizer.FormatValues(values))
	}
	return nil
}
