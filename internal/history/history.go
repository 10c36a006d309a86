// Package history answers read-only questions about a finished change-history
// graph: the ordered list of changes behind an element, and its blame.
package history

import (
	"sort"
	"time"

	"github.com/masmgr/codetracker-go/internal/graph"
	"github.com/masmgr/codetracker-go/internal/model"
)

// Entry is one edge of an element's history.
type Entry struct {
	Before  model.CodeElement
	After   model.CodeElement
	Changes []model.Change
	Seq     int
}

// CommitID returns the commit that introduced the change.
func (e Entry) CommitID() string {
	return e.After.Version.ID
}

// Date returns the commit time of the change.
func (e Entry) Date() time.Time {
	return e.After.Version.Time
}

// Kinds returns the distinct change kinds of the entry.
func (e Entry) Kinds() []model.ChangeKind {
	return model.Kinds(e.Changes)
}

// Has reports whether the entry carries a change of kind k.
func (e Entry) Has(k model.ChangeKind) bool {
	return model.HasKind(e.Changes, k)
}

// Info is the history of one element.
type Info struct {
	Start   model.CodeElement
	Entries []Entry
	// Truncated is set when part of the ancestry was abandoned, so older
	// entries may be missing.
	Truncated bool
}

// History returns every edge reachable backwards from start, newest first.
// An edge is listed only after every edge closer to start that depends on it.
// Remaining ties go to the newer after-version, then the newer
// before-version, then the edge added first.
func History(g *graph.Graph, start model.CodeElement) Info {
	info := Info{Start: start}
	root, ok := g.Lookup(start)
	if !ok {
		return info
	}

	edges, nodes := reachable(g, root)
	for _, n := range nodes {
		if _, truncated := g.Truncated(n); truncated {
			info.Truncated = true
			break
		}
	}

	// pending counts, per node, the outgoing edges not yet listed.
	pending := make(map[*graph.Node]int, len(nodes))
	for _, e := range edges {
		pending[e.Before]++
	}

	listed := make(map[*graph.Edge]bool, len(edges))
	ready := g.Incoming(root)
	for len(listed) < len(edges) {
		if len(ready) == 0 {
			// Unreachable for acyclic graphs; list the rest in insertion order.
			for _, e := range edges {
				if !listed[e] {
					listed[e] = true
					info.Entries = append(info.Entries, entryOf(e))
				}
			}
			break
		}

		sort.SliceStable(ready, func(i, j int) bool { return newer(ready[i], ready[j]) })
		e := ready[0]
		ready = ready[1:]
		if listed[e] {
			continue
		}
		listed[e] = true
		info.Entries = append(info.Entries, entryOf(e))

		pending[e.Before]--
		if pending[e.Before] == 0 {
			ready = append(ready, g.Incoming(e.Before)...)
		}
	}
	return info
}

// reachable collects the edges and nodes reachable from root against edge
// direction, edges in insertion order.
func reachable(g *graph.Graph, root *graph.Node) ([]*graph.Edge, []*graph.Node) {
	seen := map[*graph.Node]bool{root: true}
	nodes := []*graph.Node{root}
	var edges []*graph.Edge
	for i := 0; i < len(nodes); i++ {
		for _, e := range g.Incoming(nodes[i]) {
			edges = append(edges, e)
			if !seen[e.Before] {
				seen[e.Before] = true
				nodes = append(nodes, e.Before)
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Seq < edges[j].Seq })
	return edges, nodes
}

// newer orders two edges that are both ready to be listed.
func newer(a, b *graph.Edge) bool {
	at, bt := a.After.Element.Version.Time, b.After.Element.Version.Time
	if !at.Equal(bt) {
		return at.After(bt)
	}
	at, bt = a.Before.Element.Version.Time, b.Before.Element.Version.Time
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return a.Seq < b.Seq
}

func entryOf(e *graph.Edge) Entry {
	return Entry{
		Before:  e.Before.Element,
		After:   e.After.Element,
		Changes: e.Changes,
		Seq:     e.Seq,
	}
}

// Blame returns the first entry of the history that changed the element's
// behaviour: its introduction or a body change. Cosmetic transitions such as
// renames and moves are skipped.
func Blame(g *graph.Graph, start model.CodeElement) (Entry, bool) {
	return BlameEntries(History(g, start).Entries)
}

// BlameEntries applies the blame rule to an ordered history.
func BlameEntries(entries []Entry) (Entry, bool) {
	for _, e := range entries {
		if e.Has(model.ChangeIntroduced) || e.Has(model.ChangeBody) {
			return e, true
		}
	}
	return Entry{}, false
}
