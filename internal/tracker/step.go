package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/masmgr/codetracker-go/internal/graph"
	"github.com/masmgr/codetracker-go/internal/match"
	"github.com/masmgr/codetracker-go/internal/model"
	"github.com/masmgr/codetracker-go/internal/oracle"
)

// proposal is what scanning one frontier element yields, recorded in the
// graph when the whole batch has been scanned.
type proposal struct {
	node       *graph.Node
	parent     model.Version
	state      State
	candidates int
	reason     string
	edges      []edgeProposal
}

type edgeProposal struct {
	before      model.CodeElement
	changes     []model.Change
	introduced  bool
	description string
}

// refactoringGroups is the scan order of cross-container refactorings. A
// group stops the scan as soon as one of its kinds matches.
var refactoringGroups = [][]oracle.RefactoringKind{
	{oracle.RefactoringExtract, oracle.RefactoringInline},
	{oracle.RefactoringMerge},
	{oracle.RefactoringSplit},
	{oracle.RefactoringPullUp, oracle.RefactoringPushDown, oracle.RefactoringMove, oracle.RefactoringRename, oracle.RefactoringMoveAndRename},
}

// scan resolves one frontier element against the transition parent -> child
// in strict priority order: unchanged pairs, changed pairs, refactorings,
// additions.
func (w *walk) scan(ctx context.Context, n *graph.Node, parent model.Version, refs []oracle.Refactoring, diffs map[string]oracle.ContainerDiff) (proposal, error) {
	p := proposal{node: n, parent: parent, state: StateScanning}
	elem := n.Element
	m := w.matcher(elem)

	diff, err := w.diffFor(ctx, oracle.DiffRequest{
		Parent:    parent,
		Child:     elem.Version,
		Container: elem.Container,
		Path:      elem.Path,
	}, diffs)
	if errors.Is(err, errBranchTimeout) {
		p.state, p.reason = StateOracleTimeout, "diff timed out"
		return p, nil
	}
	if err != nil {
		return p, err
	}

	var unchanged, changed []edgeProposal
	for _, pair := range diff.Matched {
		if !m.Matches(pair.After) {
			continue
		}
		before := pair.Before.At(parent)
		before.Absent = false
		moved := pair.Before.Container != pair.After.Container

		if len(pair.Changes) == 0 && !moved {
			unchanged = append(unchanged, edgeProposal{before: before, changes: []model.Change{{Kind: model.ChangeNone}}})
			continue
		}
		changes := append([]model.Change(nil), pair.Changes...)
		if moved && !model.HasKind(changes, model.ChangeContainer) {
			changes = append(changes, model.Change{Kind: model.ChangeContainer,
				Description: fmt.Sprintf("%s -> %s", before.ContainerRef(), pair.After.At(elem.Version).ContainerRef())})
		}
		changed = append(changed, edgeProposal{before: before, changes: changes})
	}
	if len(unchanged) > 0 {
		return p.resolve(unchanged), nil
	}
	if len(changed) > 0 {
		return p.resolve(changed), nil
	}

	for _, group := range refactoringGroups {
		if edges := w.scanGroup(group, m, refs, parent); len(edges) > 0 {
			return p.resolve(edges), nil
		}
	}

	if i := match.First(m, diff.Added); i >= 0 {
		p.edges = []edgeProposal{{
			before:      elem.At(parent),
			introduced:  true,
			description: "added in " + elem.Version.Short(),
		}}
		p.state, p.candidates = StateIntroduced, 1
		return p, nil
	}

	p.state, p.reason = StateUnresolved, "no candidate in parent"
	return p, nil
}

// resolve settles the state for a non-empty set of candidate edges.
func (p proposal) resolve(edges []edgeProposal) proposal {
	p.edges = edges
	p.candidates = len(edges)
	p.state = StateMatched

	introducedOnly := true
	for _, e := range edges {
		if !e.introduced {
			introducedOnly = false
		}
	}
	switch {
	case introducedOnly:
		p.state = StateIntroduced
	case len(edges) > 1 && !mergeOnly(edges):
		p.state = StateAmbiguous
	}
	return p
}

func mergeOnly(edges []edgeProposal) bool {
	for _, e := range edges {
		if !model.HasKind(e.changes, model.ChangeMerge) {
			return false
		}
	}
	return true
}

// scanGroup takes, for every kind of the group, the first descriptor the
// tracked element takes part in.
func (w *walk) scanGroup(group []oracle.RefactoringKind, m match.Matcher, refs []oracle.Refactoring, parent model.Version) []edgeProposal {
	var edges []edgeProposal
	for _, kind := range group {
		for _, ref := range refs {
			if ref.Kind != kind {
				continue
			}
			if found := refactoringEdges(ref, m, parent); len(found) > 0 {
				edges = append(edges, found...)
				break
			}
		}
	}
	return edges
}

// refactoringEdges returns the edges a descriptor contributes into the
// tracked element, or nil when the element takes no part in it.
func refactoringEdges(ref oracle.Refactoring, m match.Matcher, parent model.Version) []edgeProposal {
	bind := func(e model.CodeElement) model.CodeElement {
		e = e.At(parent)
		e.Absent = false
		return e
	}
	with := func(kinds ...model.ChangeKind) []model.Change {
		changes := make([]model.Change, 0, len(kinds)+len(ref.Changes))
		for _, k := range kinds {
			changes = append(changes, model.Change{Kind: k, Description: ref.Description})
		}
		return append(changes, ref.Changes...)
	}

	switch ref.Kind {
	case oracle.RefactoringExtract:
		source, extracted := ref.After[0], ref.After[1]
		if m.Matches(extracted) {
			return []edgeProposal{{
				before:      bind(m.Target()),
				introduced:  true,
				description: "extracted from " + ref.Before[0].String(),
			}}
		}
		if m.Matches(source) {
			return []edgeProposal{{before: bind(ref.Before[0]), changes: with(model.ChangeBody)}}
		}

	case oracle.RefactoringInline:
		if m.Matches(ref.After[0]) {
			return []edgeProposal{{before: bind(ref.Before[0]), changes: with(model.ChangeBody)}}
		}

	case oracle.RefactoringMerge:
		if m.Matches(ref.After[0]) {
			edges := make([]edgeProposal, len(ref.Before))
			for i, b := range ref.Before {
				edges[i] = edgeProposal{before: bind(b), changes: with(model.ChangeMerge)}
			}
			return edges
		}

	case oracle.RefactoringSplit:
		if match.First(m, ref.After) >= 0 {
			return []edgeProposal{{before: bind(ref.Before[0]), changes: with(model.ChangeSplit)}}
		}

	case oracle.RefactoringRename:
		if m.Matches(ref.After[0]) {
			return []edgeProposal{{before: bind(ref.Before[0]), changes: with(model.ChangeRename)}}
		}

	case oracle.RefactoringMove, oracle.RefactoringPullUp, oracle.RefactoringPushDown:
		if m.Matches(ref.After[0]) {
			return []edgeProposal{{before: bind(ref.Before[0]), changes: with(model.ChangeMove)}}
		}

	case oracle.RefactoringMoveAndRename:
		if m.Matches(ref.After[0]) {
			return []edgeProposal{{before: bind(ref.Before[0]), changes: with(model.ChangeMove, model.ChangeRename)}}
		}
	}
	return nil
}
