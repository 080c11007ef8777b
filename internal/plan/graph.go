package plan

// Graph is the dependency graph over feature names. An edge A -> B means
// "A reads B's output". Nodes and adjacency lists keep insertion order so
// traversals are deterministic for identical inputs.
type Graph struct {
	nodes map[string]*node
	order []string
}

type node struct {
	id         string
	deps       []string
	dependents []string
}

func newGraph() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// addNode registers a node. Adding an existing ID is a no-op.
func (g *Graph) addNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
}

// addEdge records that `from` depends on `to`. Both nodes must exist.
// Duplicate edges are collapsed.
func (g *Graph) addEdge(from, to string) {
	fromNode := g.nodes[from]
	for _, d := range fromNode.deps {
		if d == to {
			return
		}
	}
	fromNode.deps = append(fromNode.deps, to)
	g.nodes[to].dependents = append(g.nodes[to].dependents, from)
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the IDs a node depends on, in declared order.
func (g *Graph) Dependencies(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, len(n.deps))
	copy(out, n.deps)
	return out
}

// Dependents returns the IDs that depend on a node.
func (g *Graph) Dependents(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, len(n.dependents))
	copy(out, n.dependents)
	return out
}
