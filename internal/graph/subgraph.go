package graph

import "github.com/masmgr/codetracker-go/internal/model"

// FindSubGraph returns a copy of the weakly connected component holding
// start: every node reachable from it following edges in either direction.
// Node IDs and edge sequence numbers are preserved. The result is empty when
// start is not in the graph.
func (g *Graph) FindSubGraph(start model.CodeElement) *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	sub := New(g.logger)
	root, ok := g.nodes[start.NodeKey()]
	if !ok {
		return sub
	}

	reached := map[*Node]bool{root: true}
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range g.out[n] {
			if !reached[e.After] {
				reached[e.After] = true
				queue = append(queue, e.After)
			}
		}
		for _, e := range g.in[n] {
			if !reached[e.Before] {
				reached[e.Before] = true
				queue = append(queue, e.Before)
			}
		}
	}

	copies := make(map[*Node]*Node, len(reached))
	for _, n := range g.order {
		if !reached[n] {
			continue
		}
		c := &Node{ID: n.ID, Element: n.Element}
		copies[n] = c
		sub.nodes[n.Element.NodeKey()] = c
		sub.order = append(sub.order, c)
		sub.member[c] = true
	}
	// Staged nodes reached through edges are copied as staged.
	for _, n := range g.staged {
		if !reached[n] {
			continue
		}
		c := &Node{ID: n.ID, Element: n.Element}
		copies[n] = c
		sub.staged = append(sub.staged, c)
		sub.member[c] = true
	}

	for _, e := range g.edges {
		before, okBefore := copies[e.Before]
		after, okAfter := copies[e.After]
		if !okBefore || !okAfter {
			continue
		}
		ce := &Edge{Seq: e.Seq, Before: before, After: after, Changes: e.Changes}
		sub.edges = append(sub.edges, ce)
		sub.out[before] = append(sub.out[before], ce)
		sub.in[after] = append(sub.in[after], ce)
	}

	for n, reason := range g.truncated {
		if c, ok := copies[n]; ok {
			sub.truncated[c] = reason
		}
	}

	sub.nextNode = g.nextNode
	sub.nextEdge = g.nextEdge
	return sub
}
