package tracker

import "github.com/masmgr/codetracker-go/internal/graph"

// worklist holds the frontier of one walk: newest versions first, first in
// first out among equal timestamps.
type worklist struct {
	items []*graph.Node
}

func (w *worklist) Len() int {
	return len(w.items)
}

// push inserts n after every item at least as new as n.
func (w *worklist) push(n *graph.Node) {
	t := n.Element.Version.Time
	i := len(w.items)
	for j, it := range w.items {
		if it.Element.Version.Time.Before(t) {
			i = j
			break
		}
	}
	w.items = append(w.items, nil)
	copy(w.items[i+1:], w.items[i:])
	w.items[i] = n
}

// popBatch removes and returns the head item together with every other item
// at the same version, preserving their order.
func (w *worklist) popBatch() []*graph.Node {
	if len(w.items) == 0 {
		return nil
	}
	id := w.items[0].Element.Version.ID
	var batch, rest []*graph.Node
	for _, it := range w.items {
		if it.Element.Version.ID == id {
			batch = append(batch, it)
		} else {
			rest = append(rest, it)
		}
	}
	w.items = rest
	return batch
}
