package oracle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/masmgr/codetracker-go/internal/model"
)

// Replay serves oracle responses recorded ahead of time, keyed by the child
// version of each transition. Transitions without a recording answer with an
// empty diff and no refactorings. Replay is safe for concurrent use.
type Replay struct {
	mu          sync.RWMutex
	transitions map[string]*transition

	diffCalls        atomic.Int64
	refactoringCalls atomic.Int64
}

type transition struct {
	diffs        map[string]ContainerDiff
	refactorings []Refactoring
	timeout      bool
	latency      time.Duration
	err          error
}

// NewReplay creates an empty replay oracle.
func NewReplay() *Replay {
	return &Replay{transitions: make(map[string]*transition)}
}

func (r *Replay) at(child string) *transition {
	t, ok := r.transitions[child]
	if !ok {
		t = &transition{diffs: make(map[string]ContainerDiff)}
		r.transitions[child] = t
	}
	return t
}

// AddDiff records the diff of container across the transition into child.
// Repeated calls for the same container accumulate.
func (r *Replay) AddDiff(child, container string, d ContainerDiff) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.at(child)
	cur := t.diffs[container]
	cur.Matched = append(cur.Matched, d.Matched...)
	cur.Added = append(cur.Added, d.Added...)
	cur.Removed = append(cur.Removed, d.Removed...)
	t.diffs[container] = cur
}

// AddRefactorings records descriptors for the transition into child.
func (r *Replay) AddRefactorings(child string, refs ...Refactoring) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.at(child)
	t.refactorings = append(t.refactorings, refs...)
}

// SetTimeout makes every call for the transition into child fail with ErrTimeout.
func (r *Replay) SetTimeout(child string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.at(child).timeout = true
}

// SetLatency delays every call for the transition into child by d, honouring
// context cancellation.
func (r *Replay) SetLatency(child string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.at(child).latency = d
}

// SetError makes every call for the transition into child fail with err.
func (r *Replay) SetError(child string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.at(child).err = err
}

// Calls returns how many Diff and Refactorings calls were served.
func (r *Replay) Calls() (diffs, refactorings int64) {
	return r.diffCalls.Load(), r.refactoringCalls.Load()
}

// Diff implements Oracle.
func (r *Replay) Diff(ctx context.Context, req DiffRequest) (ContainerDiff, error) {
	r.diffCalls.Add(1)

	t, err := r.enter(ctx, req.Child.ID)
	if err != nil || t == nil {
		return ContainerDiff{}, err
	}

	r.mu.RLock()
	recorded := t.diffs[req.Container]
	r.mu.RUnlock()

	out := ContainerDiff{
		Matched: make([]MatchedPair, len(recorded.Matched)),
		Added:   bindAll(recorded.Added, req.Child),
		Removed: bindAll(recorded.Removed, req.Parent),
	}
	for i, p := range recorded.Matched {
		out.Matched[i] = MatchedPair{
			Before:  p.Before.At(req.Parent),
			After:   p.After.At(req.Child),
			Changes: p.Changes,
		}
	}
	return out, nil
}

// Refactorings implements Oracle.
func (r *Replay) Refactorings(ctx context.Context, parent, child model.Version) ([]Refactoring, error) {
	r.refactoringCalls.Add(1)

	t, err := r.enter(ctx, child.ID)
	if err != nil || t == nil {
		return nil, err
	}

	r.mu.RLock()
	recorded := t.refactorings
	r.mu.RUnlock()

	out := make([]Refactoring, len(recorded))
	for i, ref := range recorded {
		out[i] = Refactoring{
			Kind:        ref.Kind,
			Before:      bindAll(ref.Before, parent),
			After:       bindAll(ref.After, child),
			Changes:     ref.Changes,
			Description: ref.Description,
		}
	}
	return out, nil
}

// enter applies the recorded failure modes for a transition.
func (r *Replay) enter(ctx context.Context, child string) (*transition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	t := r.transitions[child]
	r.mu.RUnlock()
	if t == nil {
		return nil, nil
	}

	if t.latency > 0 {
		timer := time.NewTimer(t.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if t.timeout {
		return nil, ErrTimeout
	}
	if t.err != nil {
		return nil, t.err
	}
	return t, nil
}

func bindAll(elems []model.CodeElement, v model.Version) []model.CodeElement {
	if len(elems) == 0 {
		return nil
	}
	out := make([]model.CodeElement, len(elems))
	for i, e := range elems {
		out[i] = e.At(v)
	}
	return out
}

// Compile-time interface conformance check.
var _ Oracle = (*Replay)(nil)
