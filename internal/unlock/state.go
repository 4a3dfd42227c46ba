package unlock

import (
	"sort"

	"github.com/papapumpkin/idlecore/internal/bignum"
)

// Edge is a single requirement: Node requires Requires.
type Edge struct {
	Node     string `toml:"node" json:"node"`
	Requires string `toml:"requires" json:"requires"`
}

// NodeState is the persistable form of a Node.
type NodeState struct {
	ID          string        `toml:"id" json:"id"`
	Name        string        `toml:"name,omitempty" json:"name,omitempty"`
	Description string        `toml:"description,omitempty" json:"description,omitempty"`
	Icon        string        `toml:"icon,omitempty" json:"icon,omitempty"`
	Cost        bignum.Number `toml:"cost" json:"cost"`
	Unlocked    bool          `toml:"unlocked" json:"unlocked"`
	UnlockTime  int64         `toml:"unlock_time" json:"unlock_time"`
	Tier        int32         `toml:"tier" json:"tier"`
}

// State is the persistable form of a Tree. Edges are stored separately
// because they cannot be derived from the nodes.
type State struct {
	Nodes []NodeState `toml:"nodes" json:"nodes"`
	Edges []Edge      `toml:"edges" json:"edges"`
}

// Edges returns every requirement edge, sorted by node then insertion order
// of the requirement.
func (t *Tree) Edges() []Edge {
	ids := make([]string, 0, len(t.requirements))
	for id := range t.requirements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []Edge
	for _, id := range ids {
		for _, req := range t.requirements[id] {
			out = append(out, Edge{Node: id, Requires: req})
		}
	}
	return out
}

// State exports nodes and edges as plain data.
func (t *Tree) State() State {
	s := State{Edges: t.Edges()}
	for _, n := range t.Nodes() {
		s.Nodes = append(s.Nodes, NodeState(*n))
	}
	return s
}

// Restore replaces the tree's contents with s. Edges are re-validated;
// an edge naming a missing node or closing a cycle is dropped and returned.
func (t *Tree) Restore(s State) (rejected []Edge) {
	t.nodes = make(map[string]*Node, len(s.Nodes))
	t.requirements = make(map[string][]string)
	for _, n := range s.Nodes {
		t.AddNode(Node(n))
	}
	for _, e := range s.Edges {
		if !t.AddRequirement(e.Node, e.Requires) {
			rejected = append(rejected, e)
		}
	}
	return rejected
}
