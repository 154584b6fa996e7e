package wikitext

import "strings"

// Wikicode is an editable sequence of nodes. Serializing it with String
// reproduces the parsed input byte for byte until it is mutated.
type Wikicode struct {
	Nodes []Node
}

func (w *Wikicode) String() string {
	if w == nil {
		return ""
	}
	var b strings.Builder
	for _, n := range w.Nodes {
		b.WriteString(n.String())
	}
	return b.String()
}

// All returns a depth-first snapshot of every node in the tree, including
// nodes nested inside links and templates. Mutating the tree does not
// affect a snapshot that was already taken.
func (w *Wikicode) All() []Node {
	var out []Node
	w.walk(func(n Node) { out = append(out, n) })
	return out
}

// Filter returns the nodes of All matching keep
func (w *Wikicode) Filter(keep func(Node) bool) []Node {
	var out []Node
	for _, n := range w.All() {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// Links returns every link in document order
func (w *Wikicode) Links() []*Link {
	var out []*Link
	for _, n := range w.Filter(isLink) {
		out = append(out, n.(*Link))
	}
	return out
}

// Templates returns every template in document order
func (w *Wikicode) Templates() []*Template {
	var out []*Template
	for _, n := range w.Filter(isTemplate) {
		out = append(out, n.(*Template))
	}
	return out
}

func isLink(n Node) bool {
	_, ok := n.(*Link)
	return ok
}

func isTemplate(n Node) bool {
	_, ok := n.(*Template)
	return ok
}

func (w *Wikicode) walk(visit func(Node)) {
	if w == nil {
		return
	}
	for _, n := range w.Nodes {
		visit(n)
		for _, child := range n.children() {
			child.walk(visit)
		}
	}
}

// Remove deletes node from whichever child list holds it. Siblings keep
// their relative order. It reports whether the node was found.
func (w *Wikicode) Remove(node Node) bool {
	parent, i := w.locate(node)
	if parent == nil {
		return false
	}
	parent.Nodes = append(parent.Nodes[:i], parent.Nodes[i+1:]...)
	return true
}

// Replace substitutes node with literal text at the same position
func (w *Wikicode) Replace(node Node, text string) bool {
	parent, i := w.locate(node)
	if parent == nil {
		return false
	}
	parent.Nodes[i] = &Text{Value: text}
	return true
}

// Insert places literal text at index in the top-level node list.
// Out-of-range indexes are clamped, so 0 prepends and len appends.
func (w *Wikicode) Insert(index int, text string) {
	if index < 0 {
		index = 0
	}
	if index > len(w.Nodes) {
		index = len(w.Nodes)
	}
	w.Nodes = append(w.Nodes, nil)
	copy(w.Nodes[index+1:], w.Nodes[index:])
	w.Nodes[index] = &Text{Value: text}
}

func (w *Wikicode) locate(node Node) (*Wikicode, int) {
	if w == nil {
		return nil, -1
	}
	for i, n := range w.Nodes {
		if n == node {
			return w, i
		}
		for _, child := range n.children() {
			if parent, j := child.locate(node); parent != nil {
				return parent, j
			}
		}
	}
	return nil, -1
}
