package querysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlhelper/internal/queryir"
)

func postalGreater(v any) *queryir.Expression {
	return queryir.MustNew(queryir.Col("postal"), queryir.GreaterThan, queryir.Lit(v))
}

func TestCompile_Comparison(t *testing.T) {
	sql, err := Compile(postalGreater(70000))
	require.NoError(t, err)
	assert.Equal(t, "(postal > '70000')", sql)
}

func TestCompile_NestedOr(t *testing.T) {
	high := postalGreater(70000)
	low := queryir.MustNew(queryir.Col("postal"), queryir.LessThan, queryir.Lit(50000))
	e := queryir.MustNew(queryir.Sub(high), queryir.Or, queryir.Sub(low))

	sql, err := Compile(e)
	require.NoError(t, err)
	assert.Equal(t, "((postal > '70000') OR (postal < '50000'))", sql)
}

func TestCompile_Operators(t *testing.T) {
	col := queryir.Col("c")
	tests := []struct {
		name string
		expr *queryir.Expression
		want string
	}{
		{"equals", queryir.MustNew(col, queryir.Equals, queryir.Lit("x")), "(c = 'x')"},
		{"not equals", queryir.MustNew(col, queryir.NotEquals, queryir.Lit("x")), "(c <> 'x')"},
		{"greater or equal", queryir.MustNew(col, queryir.GreaterThanOrEqualTo, queryir.Lit(1)), "(c >= '1')"},
		{"less or equal", queryir.MustNew(col, queryir.LessThanOrEqualTo, queryir.Lit(1.5)), "(c <= '1.5')"},
		{"column on right", queryir.MustNew(col, queryir.Equals, queryir.Col("d")), "(c = d)"},
		{"in", queryir.MustNew(col, queryir.In, queryir.Values("a", "b")), "(c IN ('a','b'))"},
		{"not in", queryir.MustNew(col, queryir.NotIn, queryir.Values(1, 2, 3)), "(c NOT IN ('1','2','3'))"},
		{"is null", queryir.MustNew(col, queryir.IsNull, nil), "(c IS NULL)"},
		{"is not null", queryir.MustNew(col, queryir.IsNotNull, nil), "(c IS NOT NULL)"},
		{
			"contains",
			queryir.MustNew(col, queryir.Contains, queryir.Lit("ab")),
			"((c LIKE 'ab%' OR c LIKE '%ab%' OR c LIKE '%ab'))",
		},
		{
			"contains not",
			queryir.MustNew(col, queryir.ContainsNot, queryir.Lit("ab")),
			"((c NOT LIKE 'ab%' OR c NOT LIKE '%ab%' OR c NOT LIKE '%ab'))",
		},
		{
			"and of columns",
			queryir.MustNew(queryir.Sub(queryir.MustNew(col, queryir.IsNull, nil)), queryir.And, queryir.Col("flag")),
			"((c IS NULL) AND flag)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := Compile(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestCompile_BetweenMatchesAndOfComparisons(t *testing.T) {
	between, err := queryir.New(queryir.Col("postal"), queryir.Between, queryir.Values(50000, 70000))
	require.NoError(t, err)

	lower := queryir.MustNew(queryir.Col("postal"), queryir.GreaterThanOrEqualTo, queryir.Lit(50000))
	upper := queryir.MustNew(queryir.Col("postal"), queryir.LessThanOrEqualTo, queryir.Lit(70000))
	manual := queryir.MustNew(queryir.Sub(lower), queryir.And, queryir.Sub(upper))

	got, err := Compile(between)
	require.NoError(t, err)
	want, err := Compile(manual)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, "((postal >= '50000') AND (postal <= '70000'))", got)
}

func TestCompile_SanitizesIdentifiersAndValues(t *testing.T) {
	e := queryir.MustNew(queryir.Col("name--"), queryir.Equals, queryir.Lit("x'; DROP TABLE t; --"))

	sql, err := Compile(e)
	require.NoError(t, err)
	assert.Equal(t, "(name = 'x''; DROP TABLE t; ')", sql)
}

func TestCompile_ExtendedPrefix(t *testing.T) {
	e := queryir.MustNew(queryir.Col("city"), queryir.Equals, queryir.Lit("Zürich"))

	sql, err := Compile(e)
	require.NoError(t, err)
	assert.Equal(t, "(city = N'Zürich')", sql)

	plain := &SQLCompiler{}
	sql, _, err = plain.Compile(e)
	require.NoError(t, err)
	assert.Equal(t, "(city = 'Zürich')", sql)
}

func TestCompile_TimeLiteral(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 123456700, time.UTC)
	e := queryir.MustNew(queryir.Col("created"), queryir.GreaterThan, queryir.Lit(ts))

	sql, err := Compile(e)
	require.NoError(t, err)
	assert.Equal(t, "(created > '03/05/2024 02:07:09.1234567 PM')", sql)
}

func TestCompile_Errors(t *testing.T) {
	// Zero values bypass queryir.New, so the compiler must reject them itself.
	var zero queryir.Expression

	tests := []struct {
		name    string
		expr    *queryir.Expression
		wantErr error
	}{
		{"nil expression", nil, queryir.ErrEmptyExpression},
		{"zero expression", &zero, queryir.ErrEmptyExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := Compile(tt.expr)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, sql)
		})
	}
}

func TestCompile_NoPartialOutput(t *testing.T) {
	var zero queryir.Expression
	e := queryir.MustNew(queryir.Col("a"), queryir.Or, queryir.Sub(&zero))

	sql, params, err := (&SQLCompiler{Bind: true}).Compile(e)
	assert.ErrorIs(t, err, queryir.ErrEmptyExpression)
	assert.Empty(t, sql)
	assert.Nil(t, params)
}

func TestCompile_BindMode(t *testing.T) {
	c := &SQLCompiler{Bind: true}

	t.Run("comparison", func(t *testing.T) {
		sql, params, err := c.Compile(postalGreater(70000))
		require.NoError(t, err)
		assert.Equal(t, "(postal > ?)", sql)
		assert.Equal(t, []any{70000}, params)
	})

	t.Run("params follow text order", func(t *testing.T) {
		in := queryir.MustNew(queryir.Col("name"), queryir.In, queryir.Values("a", "b"))
		e := queryir.MustNew(queryir.Sub(postalGreater(1)), queryir.And, queryir.Sub(in))

		sql, params, err := c.Compile(e)
		require.NoError(t, err)
		assert.Equal(t, "((postal > ?) AND (name IN (?,?)))", sql)
		assert.Equal(t, []any{1, "a", "b"}, params)
	})

	t.Run("contains binds patterns", func(t *testing.T) {
		e := queryir.MustNew(queryir.Col("name"), queryir.Contains, queryir.Lit("o'b"))

		sql, params, err := c.Compile(e)
		require.NoError(t, err)
		assert.Equal(t, "((name LIKE ? OR name LIKE ? OR name LIKE ?))", sql)
		assert.Equal(t, []any{"o'b%", "%o'b%", "%o'b"}, params)
	})

	t.Run("time binds as timestamp text", func(t *testing.T) {
		ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		e := queryir.MustNew(queryir.Col("created"), queryir.LessThan, queryir.Lit(ts))

		_, params, err := c.Compile(e)
		require.NoError(t, err)
		assert.Equal(t, []any{"01/02/2024 12:00:00.0000000 AM"}, params)
	})
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 3, 5, 14, 7, 9, 123456700, time.UTC), "03/05/2024 02:07:09.1234567 PM"},
		{time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), "12/31/1999 12:00:00.0000000 AM"},
		{time.Date(2000, 1, 1, 12, 30, 0, 5000, time.UTC), "01/01/2000 12:30:00.0000050 PM"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Timestamp(tt.in))
	}
}

type upper string

func (u upper) String() string { return "U:" + string(u) }

func TestBindValue(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "01/02/2024 12:00:00.0000000 AM", BindValue(ts))
	assert.Equal(t, "01/02/2024 12:00:00.0000000 AM", BindValue(&ts))
	assert.Equal(t, "U:x", BindValue(upper("x")))
	assert.Equal(t, int64(4), BindValue(int64(4)))
	assert.Equal(t, []byte("raw"), BindValue([]byte("raw")))
	assert.Equal(t, int64(1), BindValue(true))
	assert.Equal(t, int64(0), BindValue(false))
}

func TestLiteral(t *testing.T) {
	c := NewSQLCompiler()

	assert.Equal(t, "null", c.Literal(nil))
	assert.Equal(t, "'o''brien'", c.Literal("o'brien"))
	assert.Equal(t, "1", c.Literal(true))
	assert.Equal(t, "0", c.Literal(false))
	assert.Equal(t, "X'ff0161'", c.Literal([]byte{0xff, 0x01, 'a'}))
	assert.Equal(t, "X''", c.Literal([]byte{}))
	assert.Equal(t, "N'東京'", c.Literal("東京"))
	assert.Equal(t, "'U:x'", c.Literal(upper("x")))
}
