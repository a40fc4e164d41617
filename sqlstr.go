// Package sqlstr provides a fluent, programmatic SQL statement assembler.
// Fragments (columns, tables, operators, functions, subqueries, parameter
// placeholders) accumulate into clause buckets that render in canonical
// order, with positional and named parameter tracking and a separate compile
// step that substitutes literal values for placeholders. It builds strings
// only: nothing is parsed, validated, or executed.
package sqlstr

import (
	"github.com/coregx/sqlstr/internal/core"
	"github.com/coregx/sqlstr/internal/logger"
	"github.com/coregx/sqlstr/internal/tracer"
)

type (
	// Builder assembles one SQL statement from typed fragments.
	Builder = core.Builder
	// Option is a functional option for configuring a Builder.
	Option = core.Option
	// ClauseKind identifies one of the closed set of statement clauses.
	ClauseKind = core.ClauseKind

	// Logger is the structured logging interface accepted by WithLogger.
	Logger = logger.Logger
	// Tracer is the tracing interface accepted by WithTracer.
	Tracer = tracer.Tracer
)

// Re-export core functions.
var (
	New         = core.New
	WithLogger  = core.WithLogger
	WithTracer  = core.WithTracer
	WithContext = core.WithContext

	// Static formatting helpers (no builder state)
	Identifier = core.Identifier
	Varchar    = core.Varchar
	Cast       = core.Cast
	Block      = core.Block

	// Logging and tracing adapters
	NewSlogAdapter = logger.NewSlogAdapter
	NewOtelTracer  = tracer.NewOtelTracer
)

// Re-export the error taxonomy for errors.Is matching.
var (
	ErrNoOpenClause        = core.ErrNoOpenClause
	ErrReferenceNotFound   = core.ErrReferenceNotFound
	ErrPositionOutOfBounds = core.ErrPositionOutOfBounds
	ErrMissingValue        = core.ErrMissingValue
	ErrTooManyValues       = core.ErrTooManyValues
)
