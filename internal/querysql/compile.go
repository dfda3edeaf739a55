package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlhelper/internal/queryir"
	"github.com/roach88/sqlhelper/internal/sanitize"
)

// DefaultExtendedPrefix marks string literals holding non-ASCII text.
const DefaultExtendedPrefix = "N"

// SQLCompiler compiles expression trees and statements to SQLite text.
//
// In literal mode (the zero value) every value is sanitized and inlined as a
// quoted string. In bind mode every value is rendered as a ? placeholder and
// returned in order alongside the text. Identifiers are sanitized in both
// modes.
//
// A SQLCompiler holds no state between calls and is safe for concurrent use.
type SQLCompiler struct {
	// Bind renders values as ? placeholders instead of inline literals.
	Bind bool

	// ExtendedPrefix is written before the opening quote of literals that
	// contain non-ASCII text. Empty disables the prefix.
	ExtendedPrefix string
}

// NewSQLCompiler creates a literal-mode compiler with the default prefix.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{ExtendedPrefix: DefaultExtendedPrefix}
}

var defaultCompiler = NewSQLCompiler()

// binarySymbols maps operators rendered as "<left> <symbol> <right>".
var binarySymbols = map[queryir.Operator]string{
	queryir.And:                  "AND",
	queryir.Or:                   "OR",
	queryir.Equals:               "=",
	queryir.NotEquals:            "<>",
	queryir.GreaterThan:          ">",
	queryir.GreaterThanOrEqualTo: ">=",
	queryir.LessThan:             "<",
	queryir.LessThanOrEqualTo:    "<=",
}

// Compile converts an expression tree to a WHERE clause body.
// Returns (sql, params, error); params is nil in literal mode.
//
// Every node is wrapped in one pair of parentheses, so precedence follows
// the tree shape. On error no text is returned.
func (c *SQLCompiler) Compile(e *queryir.Expression) (string, []any, error) {
	sql, params, err := c.compileExpression(e)
	if err != nil {
		return "", nil, err
	}
	return sql, params, nil
}

// Compile converts an expression tree to a WHERE clause body with values
// inlined as sanitized literals.
func Compile(e *queryir.Expression) (string, error) {
	sql, _, err := defaultCompiler.Compile(e)
	return sql, err
}

func (c *SQLCompiler) compileExpression(e *queryir.Expression) (string, []any, error) {
	if e == nil {
		return "", nil, fmt.Errorf("%w: nil expression", queryir.ErrEmptyExpression)
	}

	left, leftParams, err := c.compileLeft(e.Left())
	if err != nil {
		return "", nil, err
	}

	op := e.Operator()
	switch op {
	case queryir.IsNull:
		return "(" + left + " IS NULL)", leftParams, nil
	case queryir.IsNotNull:
		return "(" + left + " IS NOT NULL)", leftParams, nil
	case queryir.In:
		return c.compileIn(left, leftParams, "IN", e.Right())
	case queryir.NotIn:
		return c.compileIn(left, leftParams, "NOT IN", e.Right())
	case queryir.Contains:
		return c.compileContains(e, "LIKE")
	case queryir.ContainsNot:
		return c.compileContains(e, "NOT LIKE")
	case queryir.Between:
		return "", nil, fmt.Errorf("%w: Between must be rewritten before compiling", queryir.ErrMalformedExpression)
	}

	symbol, ok := binarySymbols[op]
	if !ok {
		return "", nil, fmt.Errorf("%w: unknown operator %s", queryir.ErrMalformedExpression, op)
	}

	right, rightParams, err := c.compileRight(e.Right(), op)
	if err != nil {
		return "", nil, err
	}

	sql := "(" + left + " " + symbol + " " + right + ")"
	return sql, append(leftParams, rightParams...), nil
}

// compileLeft renders a column or a nested expression.
func (c *SQLCompiler) compileLeft(t queryir.Term) (string, []any, error) {
	switch term := t.(type) {
	case nil:
		return "", nil, fmt.Errorf("%w: left term is required", queryir.ErrEmptyExpression)
	case queryir.Column:
		return c.column(term)
	case queryir.Nested:
		return c.compileExpression(term.Expr)
	default:
		return "", nil, fmt.Errorf("%w: left term must be a column or nested expression, got %T", queryir.ErrUnknownTermType, t)
	}
}

// compileRight renders the right term of a binary operator.
func (c *SQLCompiler) compileRight(t queryir.Term, op queryir.Operator) (string, []any, error) {
	switch term := t.(type) {
	case nil:
		return "", nil, fmt.Errorf("%w: %s requires a right term", queryir.ErrMalformedExpression, op)
	case queryir.Column:
		return c.column(term)
	case queryir.Nested:
		if term.Expr == nil {
			return "", nil, fmt.Errorf("%w: nested right term is nil", queryir.ErrMalformedExpression)
		}
		return c.compileExpression(term.Expr)
	case queryir.Literal:
		if term.Value == nil {
			return "", nil, fmt.Errorf("%w: %s against null, use IsNull", queryir.ErrMalformedExpression, op)
		}
		sql, param := c.value(term.Value)
		return sql, param, nil
	case queryir.ValueList:
		return "", nil, fmt.Errorf("%w: %s does not take a value list", queryir.ErrMalformedExpression, op)
	default:
		return "", nil, fmt.Errorf("%w: right term %T", queryir.ErrUnknownTermType, t)
	}
}

// compileIn renders "(<left> IN ('a','b'))".
func (c *SQLCompiler) compileIn(left string, params []any, keyword string, right queryir.Term) (string, []any, error) {
	list, ok := right.(queryir.ValueList)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s requires a value list", queryir.ErrMalformedExpression, keyword)
	}
	if len(list) == 0 {
		return "", nil, fmt.Errorf("%w: %s requires at least one value", queryir.ErrMalformedExpression, keyword)
	}

	items := make([]string, len(list))
	for i, lit := range list {
		sql, param := c.value(lit.Value)
		items[i] = sql
		params = append(params, param...)
	}

	return "(" + left + " " + keyword + " (" + strings.Join(items, ",") + "))", params, nil
}

// compileContains renders the prefix, substring and suffix LIKE patterns:
//
//	((name LIKE 'acme%' OR name LIKE '%acme%' OR name LIKE '%acme'))
//
// ContainsNot keeps the same shape with NOT LIKE.
func (c *SQLCompiler) compileContains(e *queryir.Expression, like string) (string, []any, error) {
	col, ok := e.Left().(queryir.Column)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s requires a column on the left", queryir.ErrMalformedExpression, e.Operator())
	}
	lit, ok := e.Right().(queryir.Literal)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s requires a string literal", queryir.ErrMalformedExpression, e.Operator())
	}
	s, ok := lit.Value.(string)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s requires a string literal, got %T", queryir.ErrMalformedExpression, e.Operator(), lit.Value)
	}

	name, _, err := c.column(col)
	if err != nil {
		return "", nil, err
	}

	patterns := []string{s + "%", "%" + s + "%", "%" + s}
	parts := make([]string, len(patterns))
	var params []any
	for i, p := range patterns {
		sql, param := c.value(p)
		parts[i] = name + " " + like + " " + sql
		params = append(params, param...)
	}

	return "((" + strings.Join(parts, " OR ") + "))", params, nil
}

// column renders a sanitized, unquoted column name.
func (c *SQLCompiler) column(name queryir.Column) (string, []any, error) {
	s := sanitize.String(string(name))
	if s == "" {
		return "", nil, fmt.Errorf("%w: empty column name", queryir.ErrMissingArgument)
	}
	return s, nil, nil
}
