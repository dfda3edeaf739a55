package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Comparison(t *testing.T) {
	e, err := New(Col("postal"), GreaterThan, Lit(70000))
	require.NoError(t, err)

	assert.Equal(t, Column("postal"), e.Left())
	assert.Equal(t, GreaterThan, e.Operator())
	assert.Equal(t, Literal{Value: 70000}, e.Right())
}

func TestNew_LeftTermRules(t *testing.T) {
	tests := []struct {
		name    string
		left    Term
		op      Operator
		right   Term
		wantErr error
	}{
		{"nil left", nil, Equals, Lit(1), ErrEmptyExpression},
		{"empty column", Col(""), Equals, Lit(1), ErrMissingArgument},
		{"literal left", Lit("x"), Equals, Lit(1), ErrUnknownTermType},
		{"value list left", Values(1, 2), Equals, Lit(1), ErrUnknownTermType},
		{"nil nested left", Nested{}, And, Lit(1), ErrEmptyExpression},
		{"nested left with contains", Sub(MustNew(Col("a"), IsNull, nil)), Contains, Lit("x"), ErrMalformedExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.left, tt.op, tt.right)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, e)
		})
	}
}

func TestNew_RightTermRules(t *testing.T) {
	tests := []struct {
		name  string
		op    Operator
		right Term
	}{
		{"missing right", Equals, nil},
		{"nil literal", NotEquals, Lit(nil)},
		{"value list for comparison", GreaterThan, Values(1, 2)},
		{"nil nested right", Or, Nested{}},
		{"in without list", In, Lit("a")},
		{"in with empty list", NotIn, ValueList{}},
		{"contains non-string", Contains, Lit(12)},
		{"contains column", ContainsNot, Col("other")},
		{"between one value", Between, Values(1)},
		{"between scalar", Between, Lit(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Col("c"), tt.op, tt.right)
			assert.ErrorIs(t, err, ErrMalformedExpression)
		})
	}
}

func TestNew_IsNullDropsRight(t *testing.T) {
	e, err := New(Col("deleted_at"), IsNull, Lit("ignored"))
	require.NoError(t, err)
	assert.Nil(t, e.Right())

	e, err = New(Col("deleted_at"), IsNotNull, nil)
	require.NoError(t, err)
	assert.Nil(t, e.Right())
}

func TestNew_InAcceptsValueList(t *testing.T) {
	e, err := New(Col("name"), In, Values("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, ValueList{{Value: "a"}, {Value: "b"}}, e.Right())
}

func TestNew_ColumnOnRight(t *testing.T) {
	e, err := New(Col("a"), Equals, Col("b"))
	require.NoError(t, err)
	assert.Equal(t, Column("b"), e.Right())
}

func TestNew_BetweenRewritten(t *testing.T) {
	e, err := New(Col("postal"), Between, Values(50000, 70000))
	require.NoError(t, err)

	assert.Equal(t, And, e.Operator())

	lower, ok := e.Left().(Nested)
	require.True(t, ok)
	assert.Equal(t, GreaterThanOrEqualTo, lower.Expr.Operator())
	assert.Equal(t, Literal{Value: 50000}, lower.Expr.Right())

	upper, ok := e.Right().(Nested)
	require.True(t, ok)
	assert.Equal(t, LessThanOrEqualTo, upper.Expr.Operator())
	assert.Equal(t, Literal{Value: 70000}, upper.Expr.Right())

	assert.Equal(t, "((postal GreaterThanOrEqualTo 50000) And (postal LessThanOrEqualTo 70000))", e.String())
}

func TestNewBetween(t *testing.T) {
	e, err := NewBetween(Col("postal"), 1, 2)
	require.NoError(t, err)

	want := MustNew(Col("postal"), Between, Values(1, 2))
	assert.Equal(t, want, e)
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(nil, Equals, Lit(1))
	})
}

func TestPrepend_DoesNotMutateOriginal(t *testing.T) {
	original := MustNew(Col("postal"), GreaterThan, Lit(70000))
	before := original.String()
	extra := MustNew(Col("name"), Equals, Lit("acme"))

	combined, err := original.PrependAnd(extra)
	require.NoError(t, err)

	assert.Equal(t, before, original.String())
	assert.Equal(t, And, combined.Operator())
	assert.Same(t, extra, combined.Left().(Nested).Expr)
	assert.Same(t, original, combined.Right().(Nested).Expr)

	either, err := original.PrependOr(extra)
	require.NoError(t, err)
	assert.Equal(t, Or, either.Operator())
	assert.Equal(t, And, combined.Operator(), "earlier root unchanged")
}

func TestPrependClause_MissingArgument(t *testing.T) {
	e := MustNew(Col("a"), IsNull, nil)

	_, err := PrependAndClause(nil, e)
	assert.ErrorIs(t, err, ErrMissingArgument)

	_, err = PrependOrClause(e, nil)
	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestListToNested(t *testing.T) {
	a := MustNew(Col("a"), Equals, Lit(1))
	b := MustNew(Col("b"), Equals, Lit(2))
	c := MustNew(Col("c"), Equals, Lit(3))

	t.Run("single element returned as is", func(t *testing.T) {
		e, err := ListToNestedAnd([]*Expression{a})
		require.NoError(t, err)
		assert.Same(t, a, e)
	})

	t.Run("and folds to the right", func(t *testing.T) {
		e, err := ListToNestedAnd([]*Expression{a, b, c})
		require.NoError(t, err)
		assert.Equal(t, "((a Equals 1) And ((b Equals 2) And (c Equals 3)))", e.String())
	})

	t.Run("or", func(t *testing.T) {
		e, err := ListToNestedOr([]*Expression{a, b})
		require.NoError(t, err)
		assert.Equal(t, "((a Equals 1) Or (b Equals 2))", e.String())
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := ListToNestedOr(nil)
		assert.ErrorIs(t, err, ErrMissingArgument)
	})

	t.Run("nil element", func(t *testing.T) {
		_, err := ListToNestedAnd([]*Expression{a, nil})
		assert.ErrorIs(t, err, ErrMissingArgument)
	})
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		in   string
		want Operator
	}{
		{"And", And},
		{"or", Or},
		{"GreaterThanOrEqualTo", GreaterThanOrEqualTo},
		{"greater_than_or_equal_to", GreaterThanOrEqualTo},
		{"is_not_null", IsNotNull},
		{"CONTAINS_NOT", ContainsNot},
		{"=", Equals},
		{"<>", NotEquals},
		{"!=", NotEquals},
		{">", GreaterThan},
		{"gte", GreaterThanOrEqualTo},
		{" < ", LessThan},
		{"lte", LessThanOrEqualTo},
		{"between", Between},
		{"not_in", NotIn},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			op, err := ParseOperator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}

	_, err := ParseOperator("")
	assert.ErrorIs(t, err, ErrMissingArgument)

	_, err = ParseOperator("like")
	assert.ErrorIs(t, err, ErrMalformedExpression)
}

func TestOperator_String(t *testing.T) {
	assert.Equal(t, "Equals", Equals.String())
	assert.Equal(t, "IsNotNull", IsNotNull.String())
	assert.Equal(t, "Operator(99)", Operator(99).String())
	assert.True(t, Between.Valid())
	assert.False(t, Operator(-1).Valid())
}

func TestExpression_String(t *testing.T) {
	var nilExpr *Expression
	assert.Equal(t, "<nil>", nilExpr.String())

	e := MustNew(Col("name"), In, Values("a", "b"))
	assert.Equal(t, "(name In [a, b])", e.String())

	e = MustNew(Col("deleted_at"), IsNull, nil)
	assert.Equal(t, "(deleted_at IsNull)", e.String())
}
