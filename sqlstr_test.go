package sqlstr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlstr"
)

func TestPublicAPI_SelectStatement(t *testing.T) {
	b := sqlstr.New().
		Select().Column("u", "id").Column("u", "name", "user_name").
		From().Table("public", "users", "u").
		Where().Column("u", "active").Equals().Scalar(true).
		And().Column("u", "id").Equals().Param().
		OrderBy().Column("u", "name").Asc().
		Limit(10)

	assert.Equal(t,
		`SELECT "u"."id" , "u"."name" AS "user_name" FROM "public"."users" AS "u" WHERE "u"."active" = true AND "u"."id" = $$1 ORDER BY "u"."name" ASC LIMIT 10`,
		b.SQL())

	require.NoError(t, b.SetParams(7))
	compiled, err := b.Compile()
	require.NoError(t, err)
	assert.Contains(t, compiled, `"u"."id" = 7`)
}

func TestPublicAPI_SubqueryAndCTE(t *testing.T) {
	active := sqlstr.New().
		Select().Column("id").
		From().Table("public", "users").
		Where().Column("active").Equals().Scalar(true)

	b := sqlstr.New()
	b.With().CTE(active, "active_users")
	b.Select().AggFunction("count", "n", false, "*").
		From().Raw(`"active_users"`)

	assert.Equal(t,
		`WITH "active_users" AS ( SELECT "id" FROM "public"."users" WHERE "active" = true ) SELECT count( * ) AS "n" FROM "active_users"`,
		b.SQL())
}

func TestPublicAPI_Errors(t *testing.T) {
	b := sqlstr.New()
	b.Column("orphan")

	require.Error(t, b.Err())
	assert.True(t, errors.Is(b.Err(), sqlstr.ErrNoOpenClause))

	_, err := b.Compile()
	assert.True(t, errors.Is(err, sqlstr.ErrNoOpenClause))
}

func TestPublicAPI_MissingValue(t *testing.T) {
	b := sqlstr.New().
		Select().Columns().
		From().Table("s", "t").
		Where().Column("v").Equals().Param()

	_, err := b.Compile()
	assert.True(t, errors.Is(err, sqlstr.ErrMissingValue))
}

func TestPublicAPI_SetParamsErrors(t *testing.T) {
	b := sqlstr.New().Select().Columns().From().Table("s", "t")

	err := b.SetParams(1, 2)
	assert.True(t, errors.Is(err, sqlstr.ErrTooManyValues))

	err = b.SetParam("missing", 1)
	assert.True(t, errors.Is(err, sqlstr.ErrReferenceNotFound))
}

func TestPublicAPI_Helpers(t *testing.T) {
	assert.Equal(t, `"schema"."table"."col"`, sqlstr.Identifier("col", "schema", "table"))
	assert.Equal(t, `CAST( '42' AS TEXT )`, sqlstr.Varchar(42))
	assert.Equal(t, `CAST( 5 AS BIGINT )`, sqlstr.Cast(5, "BIGINT"))
	assert.Equal(t, `( SELECT 1 )`, sqlstr.Block("SELECT 1"))
}

func ExampleBuilder() {
	b := sqlstr.New().
		Select().Columns().
		From().Table("public", "t").
		Where().Column("t", "v").Equals().Param()

	_ = b.SetParams(42)
	compiled, _ := b.Compile()

	fmt.Println(b.PrettySQL())
	fmt.Println(compiled)
	// Output:
	// SELECT * FROM "public"."t" WHERE "t"."v" = $1
	// SELECT * FROM "public"."t" WHERE "t"."v" = 42
}

func ExampleBuilder_namedParameters() {
	b := sqlstr.New().
		Select().Columns().
		From().Table("public", "orders").
		Where().Column("status").Equals().NamedParam("status").
		Or().Column("prev_status").Equals().NamedParam("status")

	_ = b.SetParam("status", sqlstr.Varchar("open"))
	compiled, _ := b.CompilePretty()

	fmt.Println(compiled)
	// Output:
	// SELECT * FROM "public"."orders" WHERE "status" = CAST('open' AS TEXT) OR "prev_status" = CAST('open' AS TEXT)
}

func ExampleBuilder_call() {
	b := sqlstr.New().
		Call().VoidProcedure("refresh_stats", sqlstr.Varchar("daily"), 3)

	fmt.Println(b.SQL())
	// Output:
	// CALL refresh_stats( CAST( 'daily' AS TEXT ) , 3 )
}
