package ast

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DecodeError reports a malformed AST document.
type DecodeError struct {
	Line    int
	Column  int
	Message string
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("ast:%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return "ast: " + e.Message
}

func decodeErrorf(n *yaml.Node, format string, args ...any) *DecodeError {
	return &DecodeError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}

// DecodeFile reads and decodes an AST document from path.
func DecodeFile(path string) ([]Node, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read ast file: %w", err)
	}
	return Decode(data)
}

// Decode decodes a JSON (or YAML) AST document.
//
// The document is either a single node or a sequence of nodes. Object key
// order is preserved, which matters for attributes: they render in the order
// they appear in the document. Wherever a sequence is expected a single node
// is accepted and coerced. Unrecognized node types decode to *Unknown.
func Decode(data []byte) ([]Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Message: err.Error()}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	return decodeSeq(doc.Content[0])
}

// decodeSeq decodes a node or a sequence of nodes.
func decodeSeq(n *yaml.Node) ([]Node, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.SequenceNode:
		nodes := make([]Node, 0, len(n.Content))
		for _, item := range n.Content {
			node, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
		return nodes, nil
	case yaml.MappingNode:
		node, err := decodeNode(n)
		if err != nil {
			return nil, err
		}
		return []Node{node}, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, decodeErrorf(n, "expected node or list of nodes")
}

func decodeNode(n *yaml.Node) (Node, error) {
	n = resolveAlias(n)
	if n.Kind != yaml.MappingNode {
		return nil, decodeErrorf(n, "expected node object")
	}

	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		fields[n.Content[i].Value] = n.Content[i+1]
	}

	typ, err := scalar(fields["type"])
	if err != nil {
		return nil, err
	}
	loc, err := decodeLocation(fields["location"])
	if err != nil {
		return nil, err
	}

	var node interface {
		Node
		SetLoc(Location)
	}

	switch Kind(typ) {
	case KindText:
		content, err := scalar(fields["content"])
		if err != nil {
			return nil, err
		}
		node = &Text{Content: content}

	case KindComment:
		content, err := scalar(fields["content"])
		if err != nil {
			return nil, err
		}
		node = &Comment{Content: content}

	case KindTag:
		name, err := scalar(fields["name"])
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, decodeErrorf(n, "tag node has no name")
		}
		tag := &Tag{Name: name}
		if attrs := fields["attrs"]; attrs != nil {
			if tag.Attrs, err = decodeAttrs(attrs); err != nil {
				return nil, err
			}
		}
		if content := fields["content"]; content != nil {
			if tag.Content, err = decodeSeq(content); err != nil {
				return nil, err
			}
		}
		node = tag

	case KindCode:
		content, err := scalar(fields["content"])
		if err != nil {
			return nil, err
		}
		code := &Code{Content: content}
		if sub := resolveAlias(fields["nodes"]); sub != nil && sub.Tag != "!!null" {
			if sub.Kind != yaml.SequenceNode {
				return nil, decodeErrorf(sub, "code node 'nodes' must be a list")
			}
			for _, item := range sub.Content {
				tree, err := decodeSeq(item)
				if err != nil {
					return nil, err
				}
				code.Nodes = append(code.Nodes, tree)
			}
		}
		node = code

	default:
		var raw map[string]any
		if err := n.Decode(&raw); err != nil {
			return nil, decodeErrorf(n, "invalid node: %v", err)
		}
		node = &Unknown{Type: typ, Fields: raw}
	}

	node.SetLoc(loc)
	return node, nil
}

// decodeAttrs decodes an attribute mapping, keeping document order.
func decodeAttrs(n *yaml.Node) ([]Attr, error) {
	n = resolveAlias(n)
	if n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, decodeErrorf(n, "attrs must be an object")
	}
	attrs := make([]Attr, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		value, err := decodeSeq(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, Attr{Key: n.Content[i].Value, Value: value})
	}
	return attrs, nil
}

func decodeLocation(n *yaml.Node) (Location, error) {
	n = resolveAlias(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return Location{}, nil
	}
	var loc Location
	for i := 0; i+1 < len(n.Content); i += 2 {
		v, err := strconv.Atoi(n.Content[i+1].Value)
		if err != nil {
			return Location{}, decodeErrorf(n.Content[i+1], "location %s must be a number", n.Content[i].Value)
		}
		switch n.Content[i].Value {
		case "line":
			loc.Line = v
		case "col", "column":
			loc.Column = v
		}
	}
	return loc, nil
}

// scalar returns the string value of a scalar node. A missing or null
// node yields the empty string.
func scalar(n *yaml.Node) (string, error) {
	n = resolveAlias(n)
	if n == nil || n.Tag == "!!null" {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", decodeErrorf(n, "expected a string")
	}
	return n.Value, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
