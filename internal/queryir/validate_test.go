package queryir

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_WellFormedTree(t *testing.T) {
	high := MustNew(Col("postal"), GreaterThan, Lit(70000))
	low := MustNew(Col("postal"), LessThan, Lit(50000))
	e := MustNew(Sub(high), Or, Sub(low))

	assert.NoError(t, Validate(e))
}

func TestValidate_NilExpression(t *testing.T) {
	err := Validate(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyExpression)
}

func TestValidate_ZeroValue(t *testing.T) {
	err := Validate(&Expression{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyExpression)
	assert.Contains(t, err.Error(), "root:")
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	// Hand-assembled nodes bypass New, which is what Validate exists to catch.
	badLeft := &Expression{left: Col("name"), op: In, right: Lit("a")}
	badRight := &Expression{left: Col("postal"), op: Between, right: Values(1, 2)}
	root := &Expression{left: Nested{Expr: badLeft}, op: And, right: Nested{Expr: badRight}}

	err := Validate(root)
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)

	assert.Contains(t, merr.Errors[0].Error(), "root.left:")
	assert.Contains(t, merr.Errors[0].Error(), "In requires a value list")
	assert.Contains(t, merr.Errors[1].Error(), "root.right:")
	assert.Contains(t, merr.Errors[1].Error(), "Between")
	assert.ErrorIs(t, merr.Errors[1], ErrMalformedExpression)
}

func TestValidate_DeepPath(t *testing.T) {
	bad := &Expression{left: Lit("x"), op: Equals, right: Lit(1)}
	mid := &Expression{left: Col("a"), op: Or, right: Nested{Expr: bad}}
	root := &Expression{left: Nested{Expr: mid}, op: And, right: Col("b")}

	err := Validate(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTermType)
	assert.Contains(t, err.Error(), "root.left.right:")
}

func TestValidate_UnknownOperator(t *testing.T) {
	err := Validate(&Expression{left: Col("a"), op: Operator(42), right: Lit(1)})
	assert.ErrorIs(t, err, ErrMalformedExpression)
}
