// Package unlock provides a directed acyclic graph of purchasable nodes. An
// edge from A to B means A requires B to be unlocked first. Every edge
// insertion is checked for reachability so the graph can never hold a cycle.
package unlock

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/papapumpkin/idlecore/internal/bignum"
	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/events"
)

// ErrCycle is returned by UnlockOrder when the requirement graph cannot be
// ordered. Tree never admits a cycle through AddRequirement, so this only
// happens after Restore is fed inconsistent data.
var ErrCycle = errors.New("cycle detected")

// Node is an unlockable upgrade.
type Node struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Cost        bignum.Number
	Unlocked    bool
	UnlockTime  int64
	Tier        int32
}

// Tree owns a set of nodes and the requirement edges between them. It is
// not safe for concurrent use.
type Tree struct {
	clk   clock.Clock
	nodes map[string]*Node
	// requirements maps nodeID to the ordered set of ids it requires.
	requirements map[string][]string

	events events.Bus
}

// NewTree returns an empty tree reading unlock times from clk. A nil clk
// uses the system clock.
func NewTree(clk clock.Clock) *Tree {
	return &Tree{
		clk:          clock.OrReal(clk),
		nodes:        make(map[string]*Node),
		requirements: make(map[string][]string),
	}
}

// Events returns the bus on which KindNodeUnlocked and KindNodeLocked are
// emitted.
func (t *Tree) Events() *events.Bus { return &t.events }

// AddNode stores a copy of n. It returns false when a node with the same id
// already exists.
func (t *Tree) AddNode(n Node) bool {
	if _, exists := t.nodes[n.ID]; exists {
		return false
	}
	stored := n
	t.nodes[n.ID] = &stored
	return true
}

// RemoveNode deletes the node and its own requirement list. Other nodes that
// list it as a requirement keep the dangling id and can no longer be
// unlocked until it is re-added.
func (t *Tree) RemoveNode(id string) bool {
	if _, ok := t.nodes[id]; !ok {
		return false
	}
	delete(t.nodes, id)
	delete(t.requirements, id)
	return true
}

// Node returns the stored node with the given id, or nil if not found.
func (t *Tree) Node(id string) *Node {
	return t.nodes[id]
}

// Nodes returns all stored nodes sorted by tier, then id.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, n)
	}
	sortNodes(out)
	return out
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// AddRequirement records that nodeID requires requiredID. It returns false
// when either node is missing or when the edge would close a cycle,
// including a node requiring itself. Adding an existing edge succeeds.
func (t *Tree) AddRequirement(nodeID, requiredID string) bool {
	if _, ok := t.nodes[nodeID]; !ok {
		return false
	}
	if _, ok := t.nodes[requiredID]; !ok {
		return false
	}
	// Adding nodeID -> requiredID closes a loop if nodeID is already
	// reachable from requiredID.
	if t.reaches(requiredID, nodeID) {
		return false
	}
	if !slices.Contains(t.requirements[nodeID], requiredID) {
		t.requirements[nodeID] = append(t.requirements[nodeID], requiredID)
	}
	return true
}

// RemoveRequirement deletes a single edge and reports whether it existed.
func (t *Tree) RemoveRequirement(nodeID, requiredID string) bool {
	reqs := t.requirements[nodeID]
	i := slices.Index(reqs, requiredID)
	if i < 0 {
		return false
	}
	t.requirements[nodeID] = slices.Delete(reqs, i, i+1)
	if len(t.requirements[nodeID]) == 0 {
		delete(t.requirements, nodeID)
	}
	return true
}

// Requirements returns a copy of the direct requirements of id in insertion
// order, or nil.
func (t *Tree) Requirements(id string) []string {
	return slices.Clone(t.requirements[id])
}

// AllRequirements returns every node id transitively required by id,
// sorted alphabetically.
func (t *Tree) AllRequirements(id string) []string {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	visited := make(map[string]bool)
	t.collect(id, visited)
	result := make([]string, 0, len(visited))
	for v := range visited {
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}

// Dependents returns the ids of nodes that directly require id, sorted.
func (t *Tree) Dependents(id string) []string {
	var out []string
	for nodeID, reqs := range t.requirements {
		if slices.Contains(reqs, id) {
			out = append(out, nodeID)
		}
	}
	sort.Strings(out)
	return out
}

// RequirementsMet reports whether every requirement of id names an existing,
// unlocked node. A missing node has no requirements met.
func (t *Tree) RequirementsMet(id string) bool {
	if _, ok := t.nodes[id]; !ok {
		return false
	}
	for _, req := range t.requirements[id] {
		n, ok := t.nodes[req]
		if !ok || !n.Unlocked {
			return false
		}
	}
	return true
}

// CanUnlock reports whether id exists, is still locked, has its
// requirements met and costs no more than available.
func (t *Tree) CanUnlock(id string, available bignum.Number) bool {
	n, ok := t.nodes[id]
	if !ok || n.Unlocked {
		return false
	}
	if !t.RequirementsMet(id) {
		return false
	}
	return available.GreaterOrEqual(n.Cost)
}

// Unlock marks id unlocked and stamps the unlock time. It neither checks nor
// deducts the cost; callers gate on CanUnlock and pay themselves. It returns
// false when the node is missing or already unlocked.
func (t *Tree) Unlock(id string) bool {
	n, ok := t.nodes[id]
	if !ok || n.Unlocked {
		return false
	}
	n.Unlocked = true
	n.UnlockTime = clock.Unix(t.clk)
	t.events.Emit(events.Event{Kind: events.KindNodeUnlocked, Subject: id, Value: n.Cost})
	return true
}

// Lock reverts an unlocked node. Dependents that are already unlocked stay
// unlocked.
func (t *Tree) Lock(id string) bool {
	n, ok := t.nodes[id]
	if !ok || !n.Unlocked {
		return false
	}
	n.Unlocked = false
	n.UnlockTime = 0
	t.events.Emit(events.Event{Kind: events.KindNodeLocked, Subject: id})
	return true
}

// Available returns the nodes that CanUnlock with points, sorted by tier,
// then id.
func (t *Tree) Available(points bignum.Number) []*Node {
	var out []*Node
	for id, n := range t.nodes {
		if t.CanUnlock(id, points) {
			out = append(out, n)
		}
	}
	sortNodes(out)
	return out
}

// Unlocked returns the unlocked nodes sorted by tier, then id.
func (t *Tree) Unlocked() []*Node {
	return t.partition(true)
}

// Locked returns the locked nodes sorted by tier, then id.
func (t *Tree) Locked() []*Node {
	return t.partition(false)
}

// Progress returns the unlocked fraction of nodes. An empty tree is
// complete.
func (t *Tree) Progress() float64 {
	if len(t.nodes) == 0 {
		return 1
	}
	unlocked := 0
	for _, n := range t.nodes {
		if n.Unlocked {
			unlocked++
		}
	}
	return float64(unlocked) / float64(len(t.nodes))
}

// Reset locks every node and clears unlock times. Edges are kept.
// KindNodeLocked is emitted for each node that was unlocked, in tier/id order.
func (t *Tree) Reset() {
	for _, n := range t.Nodes() {
		wasUnlocked := n.Unlocked
		n.Unlocked = false
		n.UnlockTime = 0
		if wasUnlocked {
			t.events.Emit(events.Event{Kind: events.KindNodeLocked, Subject: n.ID})
		}
	}
}

// UnlockOrder returns node ids so that every node follows its requirements.
// Among nodes freed at the same step, lower tiers come first, then ids
// alphabetically. Requirements naming missing nodes are ignored.
func (t *Tree) UnlockOrder() ([]string, error) {
	inDegree := make(map[string]int, len(t.nodes))
	dependents := make(map[string][]string, len(t.nodes))
	for id := range t.nodes {
		for _, req := range t.requirements[id] {
			if _, ok := t.nodes[req]; !ok {
				continue
			}
			inDegree[id]++
			dependents[req] = append(dependents[req], id)
		}
	}

	var queue []string
	for id := range t.nodes {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	queue = t.tierSorted(queue)

	order := make([]string, 0, len(t.nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		var freed []string
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				freed = append(freed, dep)
			}
		}
		queue = append(queue, t.tierSorted(freed)...)
	}

	if len(order) != len(t.nodes) {
		return nil, fmt.Errorf("unlock: %w: ordered %d of %d nodes", ErrCycle, len(order), len(t.nodes))
	}
	return order, nil
}

// reaches reports whether dst is reachable from src by following
// requirement edges depth first. A node always reaches itself.
func (t *Tree) reaches(src, dst string) bool {
	visited := make(map[string]bool)
	var visit func(id string) bool
	visit = func(id string) bool {
		if id == dst {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		for _, req := range t.requirements[id] {
			if visit(req) {
				return true
			}
		}
		return false
	}
	return visit(src)
}

// collect walks requirement edges from id, recording every reachable node.
func (t *Tree) collect(id string, visited map[string]bool) {
	for _, req := range t.requirements[id] {
		if !visited[req] {
			visited[req] = true
			t.collect(req, visited)
		}
	}
}

func (t *Tree) partition(unlocked bool) []*Node {
	var out []*Node
	for _, n := range t.nodes {
		if n.Unlocked == unlocked {
			out = append(out, n)
		}
	}
	sortNodes(out)
	return out
}

// tierSorted returns ids ordered by node tier ascending with alphabetical
// tiebreak.
func (t *Tree) tierSorted(ids []string) []string {
	if len(ids) <= 1 {
		return ids
	}
	sorted := slices.Clone(ids)
	sort.Slice(sorted, func(i, j int) bool {
		ti, tj := t.nodes[sorted[i]].Tier, t.nodes[sorted[j]].Tier
		if ti != tj {
			return ti < tj
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}

func sortNodes(ns []*Node) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Tier != ns[j].Tier {
			return ns[i].Tier < ns[j].Tier
		}
		return ns[i].ID < ns[j].ID
	})
}
