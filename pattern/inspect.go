package pattern

// Inspect traverses the tree rooted at n in depth-first order, calling fn for
// every node. A node's bound quantifier is visited right after the node
// itself. If fn returns false, the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	if q, ok := n.(Quantifiable); ok && q.Bound() != nil {
		fn(q.Bound())
	}
	if g, ok := n.(*GroupNode); ok {
		for _, child := range g.Children {
			Inspect(child, fn)
		}
	}
}

// Identifiers returns the identifier names used under n, in source order,
// without duplicates.
func Identifiers(n Node) []string {
	var names []string
	seen := make(map[string]bool)
	Inspect(n, func(node Node) bool {
		if id, ok := node.(*IdentifierNode); ok && !seen[id.Name] {
			seen[id.Name] = true
			names = append(names, id.Name)
		}
		return true
	})
	return names
}
