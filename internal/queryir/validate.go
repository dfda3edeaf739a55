package queryir

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate walks the whole tree and reports every malformed node.
//
// New already rejects bad nodes, so Validate matters for trees assembled
// from zero values or decoded documents, and for callers that want all
// problems at once rather than the first one a compiler hits. The returned
// error is a *multierror.Error whose entries wrap the package's sentinel
// errors. Validate is a pure function with no side effects.
func Validate(e *Expression) error {
	v := &validator{}
	v.validateExpression(e, "root")
	return v.errs.ErrorOrNil()
}

// validator accumulates errors during traversal.
type validator struct {
	errs *multierror.Error
}

func (v *validator) add(path string, err error) {
	v.errs = multierror.Append(v.errs, fmt.Errorf("%s: %w", path, err))
}

// validateExpression checks one node and recurses into nested terms.
func (v *validator) validateExpression(e *Expression, path string) {
	if e == nil {
		v.add(path, fmt.Errorf("%w: nil expression", ErrEmptyExpression))
		return
	}
	if err := checkNode(e); err != nil {
		v.add(path, err)
	}
	if n, ok := e.left.(Nested); ok && n.Expr != nil {
		v.validateExpression(n.Expr, path+".left")
	}
	if n, ok := e.right.(Nested); ok && n.Expr != nil {
		v.validateExpression(n.Expr, path+".right")
	}
}

// checkNode applies the construction rules of New to an existing node,
// without recursing. A Between operator here means the node bypassed New.
func checkNode(e *Expression) error {
	if err := checkLeft(e.left, e.op); err != nil {
		return err
	}

	switch e.op {
	case IsNull, IsNotNull:
		return nil
	case Between:
		return fmt.Errorf("%w: Between must be rewritten at construction", ErrMalformedExpression)
	case In, NotIn:
		list, ok := e.right.(ValueList)
		if !ok {
			return fmt.Errorf("%w: %s requires a value list, got %s", ErrMalformedExpression, e.op, termKind(e.right))
		}
		if len(list) == 0 {
			return fmt.Errorf("%w: %s requires at least one value", ErrMalformedExpression, e.op)
		}
		return nil
	case Contains, ContainsNot:
		lit, ok := e.right.(Literal)
		if !ok {
			return fmt.Errorf("%w: %s requires a string literal, got %s", ErrMalformedExpression, e.op, termKind(e.right))
		}
		if _, ok := lit.Value.(string); !ok {
			return fmt.Errorf("%w: %s requires a string literal, got %T", ErrMalformedExpression, e.op, lit.Value)
		}
		return nil
	case And, Or, Equals, NotEquals, GreaterThan, GreaterThanOrEqualTo, LessThan, LessThanOrEqualTo:
		return checkRight(e.right, e.op)
	default:
		return fmt.Errorf("%w: unknown operator %s", ErrMalformedExpression, e.op)
	}
}
