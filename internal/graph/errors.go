package graph

import (
	"errors"
	"fmt"

	"github.com/masmgr/codetracker-go/internal/model"
)

var (
	// ErrDuplicateEdge is matched by every *DuplicateEdgeError.
	ErrDuplicateEdge = errors.New("duplicate edge conflict")
	// ErrSelfEdge is returned when an edge would start and end at one node.
	ErrSelfEdge = errors.New("edge from a node to itself")
	// ErrForeignNode is returned when an edge endpoint belongs to another graph.
	ErrForeignNode = errors.New("node does not belong to this graph")
)

// DuplicateEdgeError reports an edge proposed between two nodes already
// connected with a different change set. The existing edge is kept.
type DuplicateEdgeError struct {
	Before   string
	After    string
	Existing []model.ChangeKind
	Proposed []model.ChangeKind
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("%v: %s -> %s has %v, proposed %v", ErrDuplicateEdge, e.Before, e.After, e.Existing, e.Proposed)
}

// Is makes errors.Is(err, ErrDuplicateEdge) hold.
func (e *DuplicateEdgeError) Is(target error) bool {
	return target == ErrDuplicateEdge
}

func newDuplicateEdgeError(existing *Edge, before model.CodeElement, after *Node, proposed []model.Change) *DuplicateEdgeError {
	return &DuplicateEdgeError{
		Before:   before.NodeKey(),
		After:    after.Element.NodeKey(),
		Existing: model.Kinds(existing.Changes),
		Proposed: model.Kinds(proposed),
	}
}
