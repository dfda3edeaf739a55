package queryir

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ParseDocument decodes a filter tree from YAML or JSON.
//
// A node is a mapping with "left", "op" and (except for is_null and
// is_not_null) "right":
//
//	left: postal            # string: column name
//	op: between
//	right: [50000, 70000]   # sequence: value list
//
// A mapping in "left" or "right" is a nested node, except that a mapping
// holding only "column" references a column on the right-hand side. A
// top-level sequence of nodes is joined with AND.
func ParseDocument(data []byte) (*Expression, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse filter document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: filter document is empty", ErrMissingArgument)
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		return parseNode(root)
	case yaml.SequenceNode:
		list := make([]*Expression, 0, len(root.Content))
		for _, item := range root.Content {
			if item.Kind != yaml.MappingNode {
				return nil, nodeError(item, fmt.Errorf("%w: list items must be filter nodes", ErrMalformedExpression))
			}
			e, err := parseNode(item)
			if err != nil {
				return nil, err
			}
			list = append(list, e)
		}
		return ListToNestedAnd(list)
	default:
		return nil, nodeError(root, fmt.Errorf("%w: filter document must be a mapping or a list", ErrMalformedExpression))
	}
}

// parseNode builds one expression from a {left, op, right} mapping.
func parseNode(n *yaml.Node) (*Expression, error) {
	var leftNode, opNode, rightNode *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "left":
			leftNode = val
		case "op", "operator":
			opNode = val
		case "right":
			rightNode = val
		default:
			return nil, nodeError(key, fmt.Errorf("%w: unknown key %q", ErrMalformedExpression, key.Value))
		}
	}

	if leftNode == nil {
		return nil, nodeError(n, fmt.Errorf("%w: missing \"left\"", ErrEmptyExpression))
	}
	if opNode == nil || opNode.Kind != yaml.ScalarNode {
		return nil, nodeError(n, fmt.Errorf("%w: missing \"op\"", ErrMalformedExpression))
	}

	op, err := ParseOperator(opNode.Value)
	if err != nil {
		return nil, nodeError(opNode, err)
	}
	left, err := parseLeft(leftNode)
	if err != nil {
		return nil, err
	}
	right, err := parseRight(rightNode)
	if err != nil {
		return nil, err
	}

	e, err := New(left, op, right)
	if err != nil {
		return nil, nodeError(n, err)
	}
	return e, nil
}

func parseLeft(n *yaml.Node) (Term, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() != "!!str" {
			return nil, nodeError(n, fmt.Errorf("%w: left term must be a column name, got %s", ErrUnknownTermType, n.ShortTag()))
		}
		return Column(n.Value), nil
	case yaml.MappingNode:
		e, err := parseNode(n)
		if err != nil {
			return nil, err
		}
		return Nested{Expr: e}, nil
	default:
		return nil, nodeError(n, fmt.Errorf("%w: left term must be a column or nested node", ErrUnknownTermType))
	}
}

func parseRight(n *yaml.Node) (Term, error) {
	if n == nil {
		return nil, nil
	}

	switch n.Kind {
	case yaml.ScalarNode:
		v, err := ScalarValue(n)
		if err != nil {
			return nil, err
		}
		return Literal{Value: v}, nil

	case yaml.SequenceNode:
		list := make(ValueList, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, nodeError(item, fmt.Errorf("%w: value lists hold scalars only", ErrMalformedExpression))
			}
			v, err := ScalarValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, Literal{Value: v})
		}
		return list, nil

	case yaml.MappingNode:
		if len(n.Content) == 2 && n.Content[0].Value == "column" {
			return Column(n.Content[1].Value), nil
		}
		e, err := parseNode(n)
		if err != nil {
			return nil, err
		}
		return Nested{Expr: e}, nil

	default:
		return nil, nodeError(n, fmt.Errorf("%w: unsupported right term", ErrMalformedExpression))
	}
}

// ScalarValue decodes a YAML scalar into a Go value by its resolved tag:
// null, bool, int64, float64, time.Time, or string.
func ScalarValue(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, nodeError(n, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, nodeError(n, err)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, nodeError(n, err)
		}
		return f, nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, nodeError(n, err)
		}
		return t, nil
	default:
		return n.Value, nil
	}
}

func nodeError(n *yaml.Node, err error) error {
	return fmt.Errorf("line %d: %w", n.Line, err)
}
