package queryir

import (
	"fmt"
	"strings"
)

// Term is an operand of an Expression.
//
// This is a sealed interface - only Column, Literal, Nested and ValueList
// implement it.
type Term interface {
	termNode() // Marker method - seals interface to this package
}

// Column references a column by name.
type Column string

func (Column) termNode() {}

// Literal is a value compared against a column.
//
// Value may be any Go value; compilers render time.Time with the fixed
// timestamp format and everything else through its string form.
type Literal struct {
	Value any
}

func (Literal) termNode() {}

// Nested wraps a sub-expression used as a term.
type Nested struct {
	Expr *Expression
}

func (Nested) termNode() {}

// ValueList is the right-hand side of In, NotIn and Between.
type ValueList []Literal

func (ValueList) termNode() {}

// Col returns a Column term.
func Col(name string) Column {
	return Column(name)
}

// Lit returns a Literal term.
func Lit(v any) Literal {
	return Literal{Value: v}
}

// Sub returns a Nested term.
func Sub(e *Expression) Nested {
	return Nested{Expr: e}
}

// Values returns a ValueList term.
func Values(vs ...any) ValueList {
	list := make(ValueList, len(vs))
	for i, v := range vs {
		list[i] = Literal{Value: v}
	}
	return list
}

// Operator is a boolean or comparison operator.
type Operator int

const (
	And Operator = iota
	Or
	Equals
	NotEquals
	In
	NotIn
	Contains
	ContainsNot
	GreaterThan
	GreaterThanOrEqualTo
	LessThan
	LessThanOrEqualTo
	Between
	IsNull
	IsNotNull
)

var operatorNames = [...]string{
	And:                  "And",
	Or:                   "Or",
	Equals:               "Equals",
	NotEquals:            "NotEquals",
	In:                   "In",
	NotIn:                "NotIn",
	Contains:             "Contains",
	ContainsNot:          "ContainsNot",
	GreaterThan:          "GreaterThan",
	GreaterThanOrEqualTo: "GreaterThanOrEqualTo",
	LessThan:             "LessThan",
	LessThanOrEqualTo:    "LessThanOrEqualTo",
	Between:              "Between",
	IsNull:               "IsNull",
	IsNotNull:            "IsNotNull",
}

// operatorAliases maps lowercased spellings without underscores to operators.
var operatorAliases = map[string]Operator{
	"=":   Equals,
	"==":  Equals,
	"eq":  Equals,
	"<>":  NotEquals,
	"!=":  NotEquals,
	"ne":  NotEquals,
	">":   GreaterThan,
	"gt":  GreaterThan,
	">=":  GreaterThanOrEqualTo,
	"gte": GreaterThanOrEqualTo,
	"<":   LessThan,
	"lt":  LessThan,
	"<=":  LessThanOrEqualTo,
	"lte": LessThanOrEqualTo,
}

func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(o))
	}
	return operatorNames[o]
}

// Valid reports whether o is one of the declared operators.
func (o Operator) Valid() bool {
	return o >= And && o <= IsNotNull
}

// ParseOperator resolves an operator name. Names match case-insensitively
// with or without underscores ("GreaterThan", "greater_than"), and the SQL
// symbols and short forms (">", "gte", "<>") are accepted.
func ParseOperator(s string) (Operator, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if key == "" {
		return 0, fmt.Errorf("%w: operator", ErrMissingArgument)
	}
	if op, ok := operatorAliases[key]; ok {
		return op, nil
	}
	for i, name := range operatorNames {
		if strings.ToLower(name) == key {
			return Operator(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown operator %q", ErrMalformedExpression, s)
}

// Expression is one (term, operator, term) node of a filter tree.
//
// The zero value is an empty expression; compiling it fails with
// ErrEmptyExpression. Build expressions with New.
type Expression struct {
	left  Term
	op    Operator
	right Term
}

// Left returns the left term.
func (e *Expression) Left() Term { return e.left }

// Operator returns the node's operator.
func (e *Expression) Operator() Operator { return e.op }

// Right returns the right term, nil for IsNull and IsNotNull.
func (e *Expression) Right() Term { return e.right }

// New builds a validated expression node.
//
// Between is rewritten into an And of two comparisons; the returned node
// never carries the Between operator.
func New(left Term, op Operator, right Term) (*Expression, error) {
	switch op {
	case IsNull, IsNotNull:
		right = nil
	case Between:
		if err := checkLeft(left, op); err != nil {
			return nil, err
		}
		return newBetween(left, right)
	}

	e := &Expression{left: left, op: op, right: right}
	if err := checkNode(e); err != nil {
		return nil, err
	}
	return e, nil
}

// MustNew is like New but panics on error. For static filters and tests.
func MustNew(left Term, op Operator, right Term) *Expression {
	e, err := New(left, op, right)
	if err != nil {
		panic(err)
	}
	return e
}

// NewBetween builds (left >= lo) AND (left <= hi).
func NewBetween(left Term, lo, hi any) (*Expression, error) {
	return New(left, Between, Values(lo, hi))
}

func newBetween(left Term, right Term) (*Expression, error) {
	list, ok := right.(ValueList)
	if !ok || len(list) != 2 {
		return nil, fmt.Errorf("%w: Between requires exactly two values", ErrMalformedExpression)
	}
	lower, err := New(left, GreaterThanOrEqualTo, list[0])
	if err != nil {
		return nil, err
	}
	upper, err := New(left, LessThanOrEqualTo, list[1])
	if err != nil {
		return nil, err
	}
	return PrependAndClause(lower, upper)
}

// checkLeft verifies the left term is a column or a nested expression.
func checkLeft(left Term, op Operator) error {
	switch l := left.(type) {
	case nil:
		return fmt.Errorf("%w: left term is required", ErrEmptyExpression)
	case Column:
		if l == "" {
			return fmt.Errorf("%w: empty column name", ErrMissingArgument)
		}
		return nil
	case Nested:
		if op == Contains || op == ContainsNot {
			return fmt.Errorf("%w: %s requires a column on the left", ErrMalformedExpression, op)
		}
		if l.Expr == nil {
			return fmt.Errorf("%w: nested left term is nil", ErrEmptyExpression)
		}
		return nil
	default:
		return fmt.Errorf("%w: left term must be a column or nested expression, got %s", ErrUnknownTermType, termKind(left))
	}
}

// checkRight verifies a scalar right term for binary operators.
func checkRight(right Term, op Operator) error {
	switch r := right.(type) {
	case nil:
		return fmt.Errorf("%w: %s requires a right term", ErrMalformedExpression, op)
	case Literal:
		if r.Value == nil {
			return fmt.Errorf("%w: %s against null, use IsNull", ErrMalformedExpression, op)
		}
	case Nested:
		if r.Expr == nil {
			return fmt.Errorf("%w: nested right term is nil", ErrMalformedExpression)
		}
	case Column:
		if r == "" {
			return fmt.Errorf("%w: empty column name", ErrMissingArgument)
		}
	case ValueList:
		return fmt.Errorf("%w: %s does not take a value list", ErrMalformedExpression, op)
	}
	return nil
}

func termKind(t Term) string {
	switch t.(type) {
	case nil:
		return "nothing"
	case Column:
		return "column"
	case Literal:
		return "literal"
	case Nested:
		return "nested expression"
	case ValueList:
		return "value list"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// PrependAndClause returns (prepend AND original).
func PrependAndClause(prepend, original *Expression) (*Expression, error) {
	return prependClause(prepend, original, And)
}

// PrependOrClause returns (prepend OR original).
func PrependOrClause(prepend, original *Expression) (*Expression, error) {
	return prependClause(prepend, original, Or)
}

func prependClause(prepend, original *Expression, op Operator) (*Expression, error) {
	if prepend == nil {
		return nil, fmt.Errorf("%w: prepend", ErrMissingArgument)
	}
	if original == nil {
		return nil, fmt.Errorf("%w: original", ErrMissingArgument)
	}
	return &Expression{left: Nested{Expr: prepend}, op: op, right: Nested{Expr: original}}, nil
}

// PrependAnd returns a new root holding prepend AND e. e is not modified.
func (e *Expression) PrependAnd(prepend *Expression) (*Expression, error) {
	return PrependAndClause(prepend, e)
}

// PrependOr returns a new root holding prepend OR e. e is not modified.
func (e *Expression) PrependOr(prepend *Expression) (*Expression, error) {
	return PrependOrClause(prepend, e)
}

// ListToNestedAnd folds expressions into one tree joined by AND.
// [a, b, c] becomes (a AND (b AND c)); a single element is returned as is.
func ListToNestedAnd(list []*Expression) (*Expression, error) {
	return listToNested(list, And)
}

// ListToNestedOr folds expressions into one tree joined by OR.
func ListToNestedOr(list []*Expression) (*Expression, error) {
	return listToNested(list, Or)
}

func listToNested(list []*Expression, op Operator) (*Expression, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: expression list is empty", ErrMissingArgument)
	}
	if list[0] == nil {
		return nil, fmt.Errorf("%w: nil expression in list", ErrMissingArgument)
	}
	if len(list) == 1 {
		return list[0], nil
	}
	rest, err := listToNested(list[1:], op)
	if err != nil {
		return nil, err
	}
	return prependClause(list[0], rest, op)
}

// String renders the expression for humans, e.g. "(postal GreaterThan 70000)".
func (e *Expression) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(termString(e.left))
	b.WriteString(" ")
	b.WriteString(e.op.String())
	if e.right != nil {
		b.WriteString(" ")
		b.WriteString(termString(e.right))
	}
	b.WriteString(")")
	return b.String()
}

func termString(t Term) string {
	switch v := t.(type) {
	case nil:
		return "<nil>"
	case Column:
		return string(v)
	case Literal:
		return fmt.Sprint(v.Value)
	case Nested:
		return v.Expr.String()
	case ValueList:
		parts := make([]string, len(v))
		for i, lit := range v {
			parts[i] = fmt.Sprint(lit.Value)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}
