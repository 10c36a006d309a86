package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/masmgr/codetracker-go/internal/graph"
	"github.com/masmgr/codetracker-go/internal/match"
	"github.com/masmgr/codetracker-go/internal/model"
	"github.com/masmgr/codetracker-go/internal/oracle"
)

// walk is the state of one Track call. Only the graph is shared with other
// walks, and only under writer.
type walk struct {
	tracker *Tracker
	graph   *graph.Graph
	writer  *sync.Mutex
	result  *Result
	logger  *slog.Logger

	frontier worklist
	// element versions ever enqueued, by NodeKey
	visited map[string]bool
	// child versions whose transition was analysed
	analysed     map[string]bool
	matchers     map[string]*match.ElementMatcher
	refactorings map[string][]oracle.Refactoring
}

// errBranchTimeout marks an oracle call that ran out of time.
var errBranchTimeout = errors.New("branch abandoned on oracle timeout")

func (w *walk) run(ctx context.Context) error {
	for w.frontier.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := w.frontier.popBatch()
		if err := w.step(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// step analyses the transition into the version shared by batch.
func (w *walk) step(ctx context.Context, batch []*graph.Node) error {
	child := batch[0].Element.Version
	parent, reason, err := w.parent(ctx, child)
	if err != nil {
		return err
	}
	if reason != "" {
		return w.exhaust(batch, reason)
	}
	w.analysed[child.ID] = true
	w.logger.Debug("analysing transition", "parent", parent.Short(), "child", child.Short(), "frontier", len(batch))

	refs, err := w.refactoringsFor(ctx, parent, child)
	if errors.Is(err, errBranchTimeout) {
		w.abandon(batch, parent, "refactoring detection timed out")
		return nil
	}
	if err != nil {
		return err
	}

	diffs := make(map[string]oracle.ContainerDiff)
	proposals := make([]proposal, 0, len(batch))
	for _, n := range batch {
		p, err := w.scan(ctx, n, parent, refs, diffs)
		if err != nil {
			return err
		}
		proposals = append(proposals, p)
	}
	return w.apply(proposals)
}

// parent resolves the version the walk continues into. A non-empty reason
// means the ancestry ends here.
func (w *walk) parent(ctx context.Context, child model.Version) (model.Version, string, error) {
	opts := w.tracker.opts
	if opts.MaxCommits > 0 && !w.analysed[child.ID] && len(w.analysed) >= opts.MaxCommits {
		w.result.Limited = true
		return model.Version{}, "commit limit reached", nil
	}

	if opts.StopAt != "" && child.ID == opts.StopAt {
		w.result.Limited = true
		return model.Version{}, "reached stop commit", nil
	}
	if !opts.Since.IsZero() && !child.Time.IsZero() && child.Time.Before(opts.Since) {
		w.result.Limited = true
		return model.Version{}, "older than since", nil
	}

	parent, ok, err := w.tracker.store.Parent(ctx, child)
	if err != nil {
		return model.Version{}, "", fmt.Errorf("resolving parent of %s: %w", child.Short(), err)
	}
	if !ok {
		return model.Version{}, "no parent", nil
	}
	return parent, "", nil
}

func (w *walk) exhaust(batch []*graph.Node, reason string) error {
	introduce := reason == "no parent" && w.tracker.opts.IntroduceAtRoot

	w.writer.Lock()
	defer w.writer.Unlock()
	for _, n := range batch {
		step := Step{Element: n.Element, State: StateExhausted, Reason: reason}
		if introduce {
			if _, err := w.graph.HandleAdd(n.Element.At(model.Version{}), n, "present at root commit"); err != nil && !errors.Is(err, graph.ErrDuplicateEdge) {
				return err
			}
			step.State = StateIntroduced
		}
		w.result.Steps = append(w.result.Steps, step)
	}
	w.graph.ConnectRelatedNodes()
	return nil
}

func (w *walk) abandon(batch []*graph.Node, parent model.Version, reason string) {
	w.writer.Lock()
	defer w.writer.Unlock()
	for _, n := range batch {
		w.markTimeoutLocked(n, parent, reason)
	}
}

func (w *walk) markTimeoutLocked(n *graph.Node, parent model.Version, reason string) {
	w.graph.MarkTruncated(n, reason)
	w.result.Truncated = true
	w.result.Timeouts = append(w.result.Timeouts, n.Element)
	w.result.Steps = append(w.result.Steps, Step{Element: n.Element, Parent: parent, State: StateOracleTimeout, Reason: reason})
	w.logger.Warn("branch abandoned", "at", n.String(), "reason", reason)
}

// apply records every proposal of a batch, connects related nodes and
// enqueues the ancestors found.
func (w *walk) apply(proposals []proposal) error {
	w.writer.Lock()
	defer w.writer.Unlock()

	var pending []model.CodeElement
	for _, p := range proposals {
		step := Step{Element: p.node.Element, Parent: p.parent, State: p.state, Candidates: p.candidates, Reason: p.reason}
		w.result.Steps = append(w.result.Steps, step)

		switch p.state {
		case StateOracleTimeout:
			w.graph.MarkTruncated(p.node, p.reason)
			w.result.Truncated = true
			w.result.Timeouts = append(w.result.Timeouts, p.node.Element)
			w.logger.Warn("branch abandoned", "at", p.node.String(), "reason", p.reason)
			continue
		case StateUnresolved:
			w.graph.MarkTruncated(p.node, p.reason)
			w.result.Truncated = true
			w.result.Unresolved = append(w.result.Unresolved, p.node.Element)
			w.logger.Warn("no candidate in parent", "at", p.node.String(), "parent", p.parent.Short())
			continue
		}

		for _, e := range p.edges {
			var err error
			if e.introduced {
				_, err = w.graph.HandleAdd(e.before, p.node, e.description)
			} else {
				_, err = w.graph.AddEdge(e.before, p.node, e.changes...)
			}
			if errors.Is(err, graph.ErrDuplicateEdge) {
				w.result.Conflicts++
				continue
			}
			if err != nil {
				return fmt.Errorf("recording edge into %s: %w", p.node, err)
			}
			if !e.introduced {
				pending = append(pending, e.before)
			}
		}
	}

	w.graph.ConnectRelatedNodes()

	for _, before := range pending {
		n, ok := w.graph.Lookup(before)
		if !ok {
			continue
		}
		key := n.Element.NodeKey()
		if w.visited[key] {
			continue
		}
		w.visited[key] = true
		w.frontier.push(n)
	}
	return nil
}

// refactoringsFor fetches, once per transition, the descriptors of the
// transition parent -> child.
func (w *walk) refactoringsFor(ctx context.Context, parent, child model.Version) ([]oracle.Refactoring, error) {
	if refs, ok := w.refactorings[child.ID]; ok {
		return refs, nil
	}

	var refs []oracle.Refactoring
	err := w.callOracle(ctx, func(ctx context.Context) error {
		var err error
		refs, err = w.tracker.oracle.Refactorings(ctx, parent, child)
		return err
	})
	if err != nil {
		return nil, err
	}

	valid := refs[:0:0]
	for _, r := range refs {
		if err := r.Validate(); err != nil {
			w.logger.Warn("malformed refactoring skipped", "child", child.Short(), "error", err)
			continue
		}
		valid = append(valid, r)
	}
	w.refactorings[child.ID] = valid
	return valid, nil
}

func (w *walk) diffFor(ctx context.Context, req oracle.DiffRequest, cache map[string]oracle.ContainerDiff) (oracle.ContainerDiff, error) {
	if d, ok := cache[req.Container]; ok {
		return d, nil
	}
	var d oracle.ContainerDiff
	err := w.callOracle(ctx, func(ctx context.Context) error {
		var err error
		d, err = w.tracker.oracle.Diff(ctx, req)
		return err
	})
	if err != nil {
		return oracle.ContainerDiff{}, err
	}
	cache[req.Container] = d
	return d, nil
}

// callOracle runs fn under the per-call timeout. Timeouts become
// errBranchTimeout unless the walk itself was cancelled.
func (w *walk) callOracle(ctx context.Context, fn func(context.Context) error) error {
	callCtx := ctx
	if d := w.tracker.opts.OracleTimeout; d > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	err := fn(callCtx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if oracle.IsTimeout(err) {
		return errBranchTimeout
	}
	return fmt.Errorf("oracle: %w", err)
}

func (w *walk) matcher(e model.CodeElement) *match.ElementMatcher {
	key := e.Key()
	if m, ok := w.matchers[key]; ok {
		return m
	}
	m := match.For(e)
	w.matchers[key] = m
	return m
}
