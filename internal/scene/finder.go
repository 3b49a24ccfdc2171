package scene

// Finder locates a node below a root. The sync engine depends on this
// interface so an indexed lookup can replace the scan without touching call
// sites.
type Finder interface {
	FindUnder(g *Graph, root Handle, match func(n *Node) bool) (Handle, bool)
}

// DepthFirstFinder scans the subtree in depth-first pre-order and returns
// the first match. Cost is O(subtree size) per lookup.
type DepthFirstFinder struct{}

// FindUnder implements Finder.
func (DepthFirstFinder) FindUnder(g *Graph, root Handle, match func(n *Node) bool) (Handle, bool) {
	for _, h := range g.Descendants(root) {
		if n, ok := g.Node(h); ok && match(n) {
			return h, true
		}
	}
	return NoHandle, false
}
