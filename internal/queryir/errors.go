package queryir

import "errors"

// Errors returned while building, validating or compiling expressions.
// Callers match them with errors.Is; the wrapped message names the node.
var (
	// ErrMissingArgument indicates a required argument is empty or nil.
	ErrMissingArgument = errors.New("missing argument")

	// ErrEmptyExpression indicates an expression without a left term.
	ErrEmptyExpression = errors.New("empty expression")

	// ErrMalformedExpression indicates a node whose terms do not fit its
	// operator, such as In without a value list.
	ErrMalformedExpression = errors.New("malformed expression")

	// ErrUnknownTermType indicates a left term that is neither a column
	// nor a nested expression.
	ErrUnknownTermType = errors.New("unknown term type")
)
