package tracker

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/masmgr/codetracker-go/internal/git"
	"github.com/masmgr/codetracker-go/internal/model"
	"github.com/masmgr/codetracker-go/internal/oracle"
)

// --- Generators ---

var trackedNames = []string{"a", "b", "c"}

type transitionPlan struct {
	actions map[string]string // name -> unchanged, body, added, missing
	merge   bool
	timeout bool
}

func genHistory() *rapid.Generator[[]transitionPlan] {
	return rapid.Custom(func(t *rapid.T) []transitionPlan {
		commits := rapid.IntRange(1, 12).Draw(t, "commits")
		plans := make([]transitionPlan, commits)
		for i := range plans {
			plans[i].actions = make(map[string]string, len(trackedNames))
			for _, n := range trackedNames {
				plans[i].actions[n] = rapid.SampledFrom([]string{"unchanged", "unchanged", "body", "added", "missing"}).
					Draw(t, fmt.Sprintf("action%d_%s", i, n))
			}
			plans[i].merge = rapid.Bool().Draw(t, fmt.Sprintf("merge%d", i))
			plans[i].timeout = rapid.IntRange(0, 9).Draw(t, fmt.Sprintf("timeout%d", i)) == 0
		}
		return plans
	})
}

// replayFor builds the oracle for plans; plans[i] describes the transition
// into c(i+1). Names are iterated in a fixed order.
func replayFor(plans []transitionPlan) *oracle.Replay {
	r := oracle.NewReplay()
	for i, p := range plans {
		child := fmt.Sprintf("c%d", i+1)
		if p.timeout {
			r.SetTimeout(child)
			continue
		}
		for _, n := range trackedNames {
			switch p.actions[n] {
			case "unchanged":
				unchanged(r, child, n)
			case "body":
				changed(r, child, n, model.ChangeBody)
			case "added":
				r.AddDiff(child, "pkg/Main", oracle.ContainerDiff{Added: []model.CodeElement{method(n)}})
			}
		}
		if p.merge {
			r.AddRefactorings(child, refactoring(oracle.RefactoringMerge, []string{"b", "c"}, []string{"a"}))
		}
	}
	return r
}

// --- Property Tests ---

func TestRapidTrack_Deterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		plans := genHistory().Draw(t, "plans")
		v := versions(len(plans) + 1)
		start := method(rapid.SampledFrom(trackedNames).Draw(t, "start")).At(v[len(v)-1])

		first, err := New(git.Chain(v...), replayFor(plans), Options{}).Track(context.Background(), start)
		if err != nil {
			t.Fatalf("Track: %v", err)
		}
		second, err := New(git.Chain(v...), replayFor(plans), Options{}).Track(context.Background(), start)
		if err != nil {
			t.Fatalf("Track: %v", err)
		}

		e1, e2 := first.Graph.Edges(), second.Graph.Edges()
		if len(e1) != len(e2) {
			t.Fatalf("edge counts differ: %d vs %d", len(e1), len(e2))
		}
		for i := range e1 {
			if e1[i].Before.Element.NodeKey() != e2[i].Before.Element.NodeKey() ||
				e1[i].After.Element.NodeKey() != e2[i].After.Element.NodeKey() ||
				fmt.Sprint(e1[i].Kinds()) != fmt.Sprint(e2[i].Kinds()) {
				t.Fatalf("edge %d differs: %v vs %v", i, e1[i], e2[i])
			}
		}
		if first.Truncated != second.Truncated {
			t.Fatalf("truncation differs")
		}
	})
}

func TestRapidTrack_TerminatesWithinBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		plans := genHistory().Draw(t, "plans")
		v := versions(len(plans) + 1)
		start := method(rapid.SampledFrom(trackedNames).Draw(t, "start")).At(v[len(v)-1])

		res, err := New(git.Chain(v...), replayFor(plans), Options{}).Track(context.Background(), start)
		if err != nil {
			t.Fatalf("Track: %v", err)
		}

		// Each element version is scanned at most once.
		bound := len(v) * len(trackedNames)
		if len(res.Steps) > bound {
			t.Fatalf("%d steps exceed bound %d", len(res.Steps), bound)
		}
		if res.Commits > len(plans) {
			t.Fatalf("analysed %d transitions of %d", res.Commits, len(plans))
		}

		// Edges always point from an older version to a newer one.
		for _, e := range res.Graph.Edges() {
			b, a := e.Before.Element.Version, e.After.Element.Version
			if !b.IsZero() && !b.Time.Before(a.Time) {
				t.Fatalf("edge %s -> %s is not time-ordered", e.Before, e.After)
			}
		}
	})
}
