package oracle

import (
	"fmt"
	"strings"

	"github.com/masmgr/codetracker-go/internal/model"
)

// DiffRequest names the container to diff and the transition to diff it across.
type DiffRequest struct {
	Parent    model.Version
	Child     model.Version
	Container string
	Path      string
}

// MatchedPair is an element present on both sides of a container diff.
// Empty Changes means the element is unchanged.
type MatchedPair struct {
	Before  model.CodeElement
	After   model.CodeElement
	Changes []model.Change
}

// ContainerDiff is the oracle's answer for one container.
type ContainerDiff struct {
	Matched []MatchedPair
	Added   []model.CodeElement
	Removed []model.CodeElement
}

// RefactoringKind tags a cross-container refactoring descriptor.
type RefactoringKind string

const (
	RefactoringExtract       RefactoringKind = "extract"
	RefactoringInline        RefactoringKind = "inline"
	RefactoringMerge         RefactoringKind = "merge"
	RefactoringSplit         RefactoringKind = "split"
	RefactoringPullUp        RefactoringKind = "pull_up"
	RefactoringPushDown      RefactoringKind = "push_down"
	RefactoringMove          RefactoringKind = "move"
	RefactoringRename        RefactoringKind = "rename"
	RefactoringMoveAndRename RefactoringKind = "move_and_rename"
)

// RefactoringKinds lists every kind in scan order.
var RefactoringKinds = []RefactoringKind{
	RefactoringExtract,
	RefactoringInline,
	RefactoringMerge,
	RefactoringSplit,
	RefactoringPullUp,
	RefactoringPushDown,
	RefactoringMove,
	RefactoringRename,
	RefactoringMoveAndRename,
}

// ParseRefactoringKind accepts "pull_up", "Pull Up", "pull-up" and similar spellings.
func ParseRefactoringKind(s string) (RefactoringKind, error) {
	norm := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range RefactoringKinds {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown refactoring kind %q", s)
}

// Refactoring is one descriptor reported by the oracle.
//
// Element layout per kind:
//   - extract: Before = [source], After = [source, extracted]
//   - inline: Before = [target, inlined], After = [target]
//   - merge: Before = [m1, m2, ...], After = [merged]
//   - split: Before = [original], After = [s1, s2, ...]
//   - pull_up, push_down, move, rename, move_and_rename: Before = [x], After = [y]
type Refactoring struct {
	Kind        RefactoringKind
	Before      []model.CodeElement
	After       []model.CodeElement
	Changes     []model.Change // additional changes carried by the operation
	Description string
}

// Validate checks the element layout for the descriptor's kind.
func (r Refactoring) Validate() error {
	switch r.Kind {
	case RefactoringExtract:
		return arity(r, 1, 1, 2, 2)
	case RefactoringInline:
		return arity(r, 2, 2, 1, 1)
	case RefactoringMerge:
		return arity(r, 2, -1, 1, 1)
	case RefactoringSplit:
		return arity(r, 1, 1, 2, -1)
	case RefactoringPullUp, RefactoringPushDown, RefactoringMove, RefactoringRename, RefactoringMoveAndRename:
		return arity(r, 1, 1, 1, 1)
	default:
		return fmt.Errorf("unknown refactoring kind %q", r.Kind)
	}
}

func arity(r Refactoring, minBefore, maxBefore, minAfter, maxAfter int) error {
	if len(r.Before) < minBefore || (maxBefore >= 0 && len(r.Before) > maxBefore) {
		return fmt.Errorf("%s: unexpected number of before elements: %d", r.Kind, len(r.Before))
	}
	if len(r.After) < minAfter || (maxAfter >= 0 && len(r.After) > maxAfter) {
		return fmt.Errorf("%s: unexpected number of after elements: %d", r.Kind, len(r.After))
	}
	return nil
}
