// Package ast defines the node tree consumed by the code generator.
// Trees are produced by an external markup parser (and optionally rewritten by
// plugins) and are treated as read-only here.
package ast

// Kind identifies the type of a node.
type Kind string

// Kind constants for the recognized node types.
const (
	KindText    Kind = "text"    // Literal character content
	KindTag     Kind = "tag"     // Element with attributes and children
	KindCode    Kind = "code"    // Embedded expression
	KindComment Kind = "comment" // Markup comment
)

// Location tracks where a node came from in the original markup.
// The zero value means the location is unknown.
type Location struct {
	Line   int
	Column int
}

// IsZero reports whether the location is unknown.
func (l Location) IsZero() bool { return l.Line == 0 && l.Column == 0 }

// Node is the interface for all template AST nodes.
type Node interface {
	Kind() Kind
	Loc() Location
	node() // marker method to restrict implementation
}

// nodeBase provides common Location handling for all nodes.
type nodeBase struct {
	loc Location
}

func (n *nodeBase) Loc() Location { return n.loc }
func (n *nodeBase) node()         {}

// SetLoc records the source location of the node.
func (n *nodeBase) SetLoc(loc Location) { n.loc = loc }

// Text holds raw character content, escaped and emitted literally.
type Text struct {
	nodeBase
	Content string
}

// Kind implements Node.
func (*Text) Kind() Kind { return KindText }

// Attr is a single attribute. Its value is itself a node sequence, so
// attribute values may contain text, code, or (unusually) tags.
type Attr struct {
	Key   string
	Value []Node
}

// Tag represents an element.
type Tag struct {
	nodeBase
	Name    string
	Attrs   []Attr // insertion order is rendering order
	Content []Node
}

// Kind implements Node.
func (*Tag) Kind() Kind { return KindTag }

// Code holds an embedded expression spliced into the generated program.
// Nodes are auxiliary sub-trees the expression can reference by index
// as __nodes[i].
type Code struct {
	nodeBase
	Content string
	Nodes   [][]Node
}

// Kind implements Node.
func (*Code) Kind() Kind { return KindCode }

// Comment holds the text of a markup comment.
type Comment struct {
	nodeBase
	Content string
}

// Kind implements Node.
func (*Comment) Kind() Kind { return KindComment }

// Unknown is a node whose type is not recognized.
// The decoder produces it instead of failing so that the generator can
// report the offending node with its full contents.
type Unknown struct {
	nodeBase
	Type   string
	Fields map[string]any
}

// Kind implements Node.
func (u *Unknown) Kind() Kind { return Kind(u.Type) }

// Attr returns the value of the attribute with the given key.
func (t *Tag) Attr(key string) ([]Node, bool) {
	for _, a := range t.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return nil, false
}

// Seq coerces a single node into a one-element sequence.
// A nil node yields an empty sequence.
func Seq(n Node) []Node {
	if n == nil {
		return nil
	}
	return []Node{n}
}
