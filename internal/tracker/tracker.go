// Package tracker walks a code element's ancestry backwards commit by commit,
// consulting the refactoring oracle at every transition and recording what it
// finds in a change-history graph.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/masmgr/codetracker-go/internal/git"
	"github.com/masmgr/codetracker-go/internal/graph"
	"github.com/masmgr/codetracker-go/internal/logging"
	"github.com/masmgr/codetracker-go/internal/match"
	"github.com/masmgr/codetracker-go/internal/model"
	"github.com/masmgr/codetracker-go/internal/oracle"
)

// Options bound and tune a walk.
type Options struct {
	// OracleTimeout limits each oracle call. Zero means no limit beyond ctx.
	OracleTimeout time.Duration
	// MaxCommits limits the number of transitions analysed per walk. Zero means no limit.
	MaxCommits int
	// Since stops the walk at commits older than this time. The transition
	// into the oldest commit at or after Since is still analysed.
	Since time.Time
	// StopAt stops the walk at the commit with exactly this id. The
	// transition into that commit is not analysed. Callers resolve
	// abbreviated ids and ref names beforehand.
	StopAt string
	// IntroduceAtRoot records an Introduced edge for elements still present
	// at a commit without parent.
	IntroduceAtRoot bool
	Logger          *slog.Logger
}

// Tracker builds change histories. A Tracker holds no per-walk state and can
// run several walks at once.
type Tracker struct {
	store  git.VersionStore
	oracle oracle.Oracle
	opts   Options
	logger *slog.Logger
}

// New creates a tracker over the given collaborators.
func New(store git.VersionStore, o oracle.Oracle, opts Options) *Tracker {
	return &Tracker{
		store:  store,
		oracle: o,
		opts:   opts,
		logger: logging.OrDiscard(opts.Logger),
	}
}

// Result is the outcome of one walk.
type Result struct {
	Graph *graph.Graph
	Start model.CodeElement

	// Truncated is set when a branch was abandoned on an oracle timeout or
	// could not be resolved; the graph is then partial.
	Truncated  bool
	Timeouts   []model.CodeElement
	Unresolved []model.CodeElement
	// Limited is set when MaxCommits, Since or StopAt ended a branch.
	Limited bool

	Steps     []Step
	Commits   int
	Conflicts int
}

// Session is the outcome of several walks sharing one graph.
type Session struct {
	Graph   *graph.Graph
	Results []*Result
}

// Truncated reports whether any walk of the session is partial.
func (s *Session) Truncated() bool {
	for _, r := range s.Results {
		if r.Truncated {
			return true
		}
	}
	return false
}

// Track walks the history of start, which must be bound to its version.
func (t *Tracker) Track(ctx context.Context, start model.CodeElement) (*Result, error) {
	g := graph.New(t.logger)
	return t.walk(ctx, g, &sync.Mutex{}, start)
}

// TrackAll walks several elements concurrently into one shared graph. Oracle
// calls run in parallel; graph updates are serialised.
func (t *Tracker) TrackAll(ctx context.Context, starts []model.CodeElement) (*Session, error) {
	session := &Session{
		Graph:   graph.New(t.logger),
		Results: make([]*Result, len(starts)),
	}
	var writer sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	for i, start := range starts {
		eg.Go(func() error {
			res, err := t.walk(ctx, session.Graph, &writer, start)
			if err != nil {
				return fmt.Errorf("tracking %s: %w", start, err)
			}
			session.Results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return session, nil
}

func (t *Tracker) walk(ctx context.Context, g *graph.Graph, writer *sync.Mutex, start model.CodeElement) (*Result, error) {
	if start.Version.IsZero() {
		return nil, fmt.Errorf("start element %s has no version", start)
	}
	if start.Version.Time.IsZero() {
		when, err := t.store.Time(ctx, start.Version.ID)
		if err != nil {
			return nil, fmt.Errorf("resolving start version: %w", err)
		}
		start.Version.Time = when
	}
	start.Absent = false

	w := &walk{
		tracker:      t,
		graph:        g,
		writer:       writer,
		result:       &Result{Graph: g, Start: start},
		visited:      make(map[string]bool),
		analysed:     make(map[string]bool),
		matchers:     make(map[string]*match.ElementMatcher),
		refactorings: make(map[string][]oracle.Refactoring),
		logger:       t.logger.With("element", start.String()),
	}

	writer.Lock()
	root := g.AddNode(start)
	writer.Unlock()

	w.visited[root.Element.NodeKey()] = true
	w.frontier.push(root)

	if err := w.run(ctx); err != nil {
		return nil, err
	}

	w.result.Commits = len(w.analysed)
	w.logger.Info("walk finished",
		"commits", w.result.Commits,
		"steps", len(w.result.Steps),
		"truncated", w.result.Truncated)
	return w.result, nil
}
