// Package xmltree parses SVG markup into a mutable element tree and
// serializes it back. It is deliberately small: enough DOM to let cleaning
// passes remove nodes, rewrite attributes and splice children while keeping
// everything else byte-identical on output.
package xmltree

// NodeType is the kind of a tree node.
type NodeType uint8

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	DoctypeNode
	ProcInstNode
)

// Attr is a single name="value" attribute. Value holds the raw characters
// between the quotes, entities intact.
type Attr struct {
	Name  string
	Value string
}

// Node is one node in the tree. For elements Data is the tag name, for text
// and comments it is the raw content, for doctypes and processing
// instructions the full raw markup.
type Node struct {
	Type     NodeType
	Data     string
	Attrs    []Attr
	Parent   *Node
	Children []*Node

	// CDATA marks a text node that was written as a CDATA section.
	CDATA bool
}

// Document is the parse result: a DocumentNode whose children are the
// prolog, doctype, comments and exactly one svg element.
type Document struct {
	Top  *Node // DocumentNode
	Root *Node // the svg element
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr returns whether the named attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// SetAttr updates the named attribute in place or appends it.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{name, value})
}

// RemoveAttr removes the named attribute, returning whether it was present.
func (n *Node) RemoveAttr(name string) bool {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// AppendChild adds c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

func (n *Node) childIndex(c *Node) int {
	for i, x := range n.Children {
		if x == c {
			return i
		}
	}
	return -1
}

// Remove detaches n and its subtree from the tree. Removing an already
// detached node is a no-op.
func (n *Node) Remove() {
	p := n.Parent
	if p == nil {
		return
	}
	if i := p.childIndex(n); i != -1 {
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
}

// ReplaceWithChildren splices n's children into n's position among its
// siblings, preserving their order, and detaches n.
func (n *Node) ReplaceWithChildren() {
	p := n.Parent
	if p == nil {
		return
	}
	i := p.childIndex(n)
	if i == -1 {
		n.Parent = nil
		return
	}
	kids := n.Children
	for _, c := range kids {
		c.Parent = p
	}
	out := make([]*Node, 0, len(p.Children)+len(kids)-1)
	out = append(out, p.Children[:i]...)
	out = append(out, kids...)
	out = append(out, p.Children[i+1:]...)
	p.Children = out
	n.Children = nil
	n.Parent = nil
}

// Detached returns whether n no longer hangs off a document.
func (n *Node) Detached() bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == DocumentNode {
			return false
		}
	}
	return true
}

// Elements returns all element nodes in the subtree rooted at n, in document
// order, as a snapshot taken before any mutation. The walk is iterative so
// deeply nested input cannot exhaust the stack.
func (n *Node) Elements() []*Node {
	var els []*Node
	stack := []*Node{n}
	for 0 < len(stack) {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == ElementNode {
			els = append(els, cur)
		}
		for i := len(cur.Children) - 1; 0 <= i; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return els
}

// Nodes returns every node in the subtree rooted at n, including n itself,
// in document order.
func (n *Node) Nodes() []*Node {
	var all []*Node
	stack := []*Node{n}
	for 0 < len(stack) {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		all = append(all, cur)
		for i := len(cur.Children) - 1; 0 <= i; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
	return all
}

// Elements returns all elements of the document in document order.
func (d *Document) Elements() []*Node {
	return d.Top.Elements()
}

// Nodes returns all nodes of the document in document order.
func (d *Document) Nodes() []*Node {
	return d.Top.Nodes()
}
