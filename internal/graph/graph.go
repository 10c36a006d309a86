// Package graph holds the change-history graph: element versions as nodes and
// the classified changes between them as edges directed from older to newer.
package graph

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/masmgr/codetracker-go/internal/logging"
	"github.com/masmgr/codetracker-go/internal/model"
)

// Node is one element version in the graph. Nodes are never mutated once
// published by ConnectRelatedNodes.
type Node struct {
	ID      int
	Element model.CodeElement
}

func (n *Node) String() string {
	return n.Element.String() + "@" + n.Element.Version.Short()
}

// Edge is a classified transformation from Before (older) to After (newer).
// Seq orders edges by insertion and breaks every remaining tie.
type Edge struct {
	Seq     int
	Before  *Node
	After   *Node
	Changes []model.Change
}

// Kinds returns the distinct change kinds carried by the edge.
func (e *Edge) Kinds() []model.ChangeKind {
	return model.Kinds(e.Changes)
}

// Has reports whether the edge carries a change of kind k.
func (e *Edge) Has(k model.ChangeKind) bool {
	return model.HasKind(e.Changes, k)
}

// Graph is the change history of one tracking session. All methods are safe
// for concurrent use.
type Graph struct {
	logger *slog.Logger

	mu sync.RWMutex
	// canonical nodes by NodeKey, and their insertion order
	nodes map[string]*Node
	order []*Node
	// before nodes proposed by AddEdge, not yet unified
	staged []*Node
	member map[*Node]bool

	edges []*Edge
	in    map[*Node][]*Edge
	out   map[*Node][]*Edge

	// nodes whose ancestry walk was abandoned, with the reason
	truncated map[*Node]string

	nextNode int
	nextEdge int
}

// New creates an empty graph. A nil logger discards.
func New(logger *slog.Logger) *Graph {
	return &Graph{
		logger: logging.OrDiscard(logger),
		nodes:  make(map[string]*Node),
		member: make(map[*Node]bool),
		in:     make(map[*Node][]*Edge),
		out:    make(map[*Node][]*Edge),

		truncated: make(map[*Node]string),
	}
}

// AddNode registers e and returns its canonical node. Repeated calls with the
// same element version return the same node.
func (g *Graph) AddNode(e model.CodeElement) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addNodeLocked(e)
}

func (g *Graph) addNodeLocked(e model.CodeElement) *Node {
	key := e.NodeKey()
	if n, ok := g.nodes[key]; ok {
		return n
	}
	n := g.newNodeLocked(e)
	g.nodes[key] = n
	g.order = append(g.order, n)
	return n
}

func (g *Graph) newNodeLocked(e model.CodeElement) *Node {
	g.nextNode++
	n := &Node{ID: g.nextNode, Element: e}
	g.member[n] = true
	return n
}

// AddEdge proposes an edge from before into after and returns the node
// standing for before. The node is staged until ConnectRelatedNodes unifies
// it with any node of the same element version.
//
// An edge into after from the same element version with the same change
// kinds is a no-op. One with different kinds is rejected with a
// *DuplicateEdgeError; the first edge is kept.
func (g *Graph) AddEdge(before model.CodeElement, after *Node, changes ...model.Change) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.member[after] {
		return nil, ErrForeignNode
	}
	if before.NodeKey() == after.Element.NodeKey() {
		return nil, ErrSelfEdge
	}

	if existing := g.edgeFromLocked(before.NodeKey(), after); existing != nil {
		if model.SameKinds(existing.Changes, changes) {
			return existing.Before, nil
		}
		err := newDuplicateEdgeError(existing, before, after, changes)
		g.logger.Warn("conflicting edge ignored",
			"before", err.Before, "after", err.After,
			"existing", err.Existing, "proposed", err.Proposed)
		return existing.Before, err
	}

	n := g.newNodeLocked(before)
	g.staged = append(g.staged, n)
	g.linkLocked(n, after, changes)
	return n, nil
}

// HandleAdd records that after was introduced: before names the element as it
// would have appeared in the parent version, where it is absent. The edge
// comes from an absent anchor node, so the walk has nowhere further to go.
func (g *Graph) HandleAdd(before model.CodeElement, after *Node, description string) (*Node, error) {
	anchor := before.AsAbsent(before.Version)
	return g.AddEdge(anchor, after, model.Change{Kind: model.ChangeIntroduced, Description: description})
}

// HandleRemoved records, for forward construction, that before no longer
// exists in after's version. The edge ends at an absent anchor node.
func (g *Graph) HandleRemoved(before *Node, after model.CodeElement, description string) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.member[before] {
		return nil, ErrForeignNode
	}
	anchor := g.addNodeLocked(after.AsAbsent(after.Version))
	changes := []model.Change{{Kind: model.ChangeRemoved, Description: description}}

	for _, e := range g.out[before] {
		if e.After != anchor {
			continue
		}
		if model.SameKinds(e.Changes, changes) {
			return anchor, nil
		}
		err := newDuplicateEdgeError(e, before.Element, anchor, changes)
		g.logger.Warn("conflicting edge ignored", "before", err.Before, "after", err.After)
		return anchor, err
	}
	g.linkLocked(before, anchor, changes)
	return anchor, nil
}

func (g *Graph) edgeFromLocked(beforeKey string, after *Node) *Edge {
	for _, e := range g.in[after] {
		if e.Before.Element.NodeKey() == beforeKey {
			return e
		}
	}
	return nil
}

func (g *Graph) linkLocked(before, after *Node, changes []model.Change) *Edge {
	g.nextEdge++
	e := &Edge{
		Seq:     g.nextEdge,
		Before:  before,
		After:   after,
		Changes: append([]model.Change(nil), changes...),
	}
	g.edges = append(g.edges, e)
	g.in[after] = append(g.in[after], e)
	g.out[before] = append(g.out[before], e)
	return e
}

// Lookup returns the canonical node of an element version.
func (g *Graph) Lookup(e model.CodeElement) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[e.NodeKey()]
	return n, ok
}

// Nodes returns the canonical nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Node(nil), g.order...)
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Edge(nil), g.edges...)
}

// Incoming returns the edges ending at n in insertion order.
func (g *Graph) Incoming(n *Node) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Edge(nil), g.in[n]...)
}

// Outgoing returns the edges starting at n in insertion order.
func (g *Graph) Outgoing(n *Node) []*Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Edge(nil), g.out[n]...)
}

// NodeCount returns the number of canonical nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// StagedCount returns the number of nodes awaiting ConnectRelatedNodes.
func (g *Graph) StagedCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.staged)
}

// MarkTruncated records that the ancestry of n was not fully walked.
func (g *Graph) MarkTruncated(n *Node, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.member[n] {
		g.truncated[n] = reason
	}
}

// Truncated reports whether the ancestry of n was abandoned, and why.
func (g *Graph) Truncated(n *Node) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	reason, ok := g.truncated[n]
	return reason, ok
}

func sortBySeq(edges []*Edge) {
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Seq < edges[j].Seq })
}
