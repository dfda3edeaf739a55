// Package queryir provides the boolean filter expression tree used to build
// WHERE clauses.
//
// An Expression is a (term, operator, term) node. Terms form a sealed union:
//
//	Column     a column reference, rendered unquoted
//	Literal    a value, rendered as a quoted string (or a bound parameter)
//	Nested     another Expression
//	ValueList  a list of literals, for In and NotIn
//
// Only types in this package implement Term, so compilers can switch over
// terms exhaustively.
//
// # Construction
//
// New validates the shape of a node once, when it is built:
//
//   - the left term is a Column or a Nested expression
//   - In/NotIn take a non-empty ValueList on the right
//   - Contains/ContainsNot take a Column on the left and a string Literal on the right
//   - IsNull/IsNotNull drop the right term
//   - Between takes a two-element ValueList and is rewritten into
//     (left >= lo) AND (left <= hi); a built tree never holds Between
//
// Expressions are immutable. PrependAnd and PrependOr return a new root that
// holds the prepended expression on the left and the original on the right.
//
// Example:
//
//	postal := queryir.Col("postal")
//	high := queryir.MustNew(postal, queryir.GreaterThan, queryir.Lit(70000))
//	low := queryir.MustNew(postal, queryir.LessThan, queryir.Lit(50000))
//	either := queryir.MustNew(queryir.Sub(high), queryir.Or, queryir.Sub(low))
//
// compiles (see querysql) to:
//
//	((postal > '70000') OR (postal < '50000'))
//
// # Documents
//
// ParseDocument reads a filter tree from YAML or JSON:
//
//	left: {left: postal, op: gt, right: 70000}
//	op: or
//	right: {left: name, op: contains, right: acme}
package queryir
