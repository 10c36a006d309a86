package graph

import "github.com/masmgr/codetracker-go/internal/model"

// ConnectRelatedNodes unifies every staged node with the canonical node of the
// same element version, repointing its edges and dropping the duplicate.
// Staged nodes without a twin become canonical. When two edges collide on the
// same pair of nodes the one added first survives. It returns the number of
// nodes unified and is idempotent.
func (g *Graph) ConnectRelatedNodes() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.staged) == 0 {
		return 0
	}

	c := &connector{g: g, replaced: make(map[*Edge]*Edge), dropped: make(map[*Edge]bool)}
	merged := 0
	for _, s := range g.staged {
		key := s.Element.NodeKey()
		canonical, ok := g.nodes[key]
		if !ok {
			g.nodes[key] = s
			g.order = append(g.order, s)
			continue
		}
		c.merge(s, canonical)
		merged++
	}
	g.staged = nil
	c.rebuild()

	if merged > 0 {
		g.logger.Debug("connected related nodes", "merged", merged, "edges", len(g.edges))
	}
	return merged
}

// connector carries the bookkeeping of one ConnectRelatedNodes pass.
type connector struct {
	g        *Graph
	replaced map[*Edge]*Edge
	dropped  map[*Edge]bool
}

// merge moves every edge of dup onto keep and forgets dup.
func (c *connector) merge(dup, keep *Node) {
	g := c.g
	for _, e := range g.out[dup] {
		if existing := findEdge(g.out[keep], func(x *Edge) bool { return x.After == e.After }); existing != nil {
			c.collide(existing, e, keep, e.After)
			continue
		}
		c.repoint(e, keep, e.After)
	}
	for _, e := range g.in[dup] {
		if existing := findEdge(g.in[keep], func(x *Edge) bool { return x.Before == e.Before }); existing != nil {
			c.collide(existing, e, e.Before, keep)
			continue
		}
		c.repoint(e, e.Before, keep)
	}
	if reason, ok := g.truncated[dup]; ok {
		g.truncated[keep] = reason
		delete(g.truncated, dup)
	}
	delete(g.out, dup)
	delete(g.in, dup)
	delete(g.member, dup)
}

// collide resolves two edges that would join the same pair of nodes once dup
// is merged. existing already joins before and after.
func (c *connector) collide(existing, moved *Edge, before, after *Node) {
	g := c.g
	if !model.SameKinds(existing.Changes, moved.Changes) {
		err := newDuplicateEdgeError(existing, before.Element, after, moved.Changes)
		g.logger.Warn("conflicting edge dropped while connecting", "before", err.Before, "after", err.After,
			"existing", err.Existing, "proposed", err.Proposed)
	}

	if existing.Seq < moved.Seq {
		c.drop(moved)
		return
	}
	c.drop(existing)
	c.repoint(moved, before, after)
}

func (c *connector) repoint(e *Edge, before, after *Node) {
	g := c.g
	ne := &Edge{Seq: e.Seq, Before: before, After: after, Changes: e.Changes}
	c.replaced[e] = ne

	g.out[e.Before] = removeEdge(g.out[e.Before], e)
	g.in[e.After] = removeEdge(g.in[e.After], e)
	g.out[before] = insertEdge(g.out[before], ne)
	g.in[after] = insertEdge(g.in[after], ne)
}

func (c *connector) drop(e *Edge) {
	g := c.g
	c.dropped[e] = true
	g.out[e.Before] = removeEdge(g.out[e.Before], e)
	g.in[e.After] = removeEdge(g.in[e.After], e)
}

// rebuild rewrites the edge list with replacements applied, keeping Seq order.
func (c *connector) rebuild() {
	g := c.g
	if len(c.replaced) == 0 && len(c.dropped) == 0 {
		return
	}
	edges := g.edges[:0:0]
	for _, e := range g.edges {
		for {
			r, ok := c.replaced[e]
			if !ok {
				break
			}
			e = r
		}
		if c.dropped[e] {
			continue
		}
		edges = append(edges, e)
	}
	g.edges = edges
}

func findEdge(edges []*Edge, pred func(*Edge) bool) *Edge {
	for _, e := range edges {
		if pred(e) {
			return e
		}
	}
	return nil
}

func removeEdge(edges []*Edge, target *Edge) []*Edge {
	for i, e := range edges {
		if e == target {
			return append(edges[:i:i], edges[i+1:]...)
		}
	}
	return edges
}

func insertEdge(edges []*Edge, e *Edge) []*Edge {
	edges = append(edges, e)
	sortBySeq(edges)
	return edges
}
