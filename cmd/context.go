package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/codetracker-go/config"
	"github.com/masmgr/codetracker-go/internal/git"
	"github.com/masmgr/codetracker-go/internal/logging"
	"github.com/masmgr/codetracker-go/internal/model"
	"github.com/masmgr/codetracker-go/internal/oracle"
	"github.com/masmgr/codetracker-go/internal/output"
	"github.com/masmgr/codetracker-go/internal/tracker"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across the tracking commands.
type CommandContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	RepoPath string
	Store    git.VersionStore
	Oracle   oracle.Oracle
	Start    model.CodeElement
	// StopAt is the base of --range, empty when unbounded.
	StopAt string
	Since  time.Time
}

// NewCommandContext creates a context from CLI flags.
// It loads configuration and the session, opens the version store and
// resolves the start element.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger := logging.New(c.App.ErrWriter, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	since, err := parseDateFlag(c.String("since"))
	if err != nil {
		return nil, fmt.Errorf("invalid since date: %w", err)
	}

	session, err := oracle.LoadSession(c.String("session"))
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	replay, err := session.Replay()
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	startRev, stopAt, err := revisions(c, session, cfg)
	if err != nil {
		return nil, err
	}

	repoPath := c.String("repo")
	store, version, stopAt, err := openStore(c.Context, c, session, cfg, repoPath, startRev, stopAt)
	if err != nil {
		return nil, err
	}

	start, err := session.StartElement(version)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	ctx := &CommandContext{
		Config:   cfg,
		Logger:   logger,
		RepoPath: repoPath,
		Store:    store,
		Oracle:   replay,
		Start:    start,
		StopAt:   stopAt,
	}
	if since != nil {
		ctx.Since = *since
	}
	logger.Debug("tracking", "element", start.String(), "commit", version.ID, "stop", stopAt)
	return ctx, nil
}

// revisions picks the start revision and the stop revision. The start comes
// from --start, then the head of --range, then the session, then the config.
func revisions(c *cli.Context, session *oracle.Session, cfg *config.Config) (start, stop string, err error) {
	if r := c.String("range"); r != "" {
		rng, err := git.ParseRange(r)
		if err != nil {
			return "", "", err
		}
		start, stop = rng.Head, rng.Base
	}
	if s := c.String("start"); s != "" {
		start = s
	}
	if start == "" && session.Start != nil {
		start = session.Start.Version
	}
	if start == "" {
		start = cfg.Tracking.DefaultBranch
	}
	return start, stop, nil
}

// openStore selects the ancestry source: the session's recorded commits when
// present, else the repository through git or go-git. The returned stop
// revision is empty or a full commit id.
func openStore(ctx context.Context, c *cli.Context, session *oracle.Session, cfg *config.Config, repoPath, startRev, stopRev string) (git.VersionStore, model.Version, string, error) {
	mem, ok, err := session.Store()
	if err != nil {
		return nil, model.Version{}, "", fmt.Errorf("invalid session: %w", err)
	}
	if ok {
		lookup := func(_ context.Context, rev string) (model.Version, error) {
			v, found := mem.Version(rev)
			if !found {
				return model.Version{}, git.ErrUnknownVersion
			}
			return v, nil
		}
		start, stop, err := resolveRevisions(ctx, lookup, startRev, stopRev)
		return mem, start, stop, err
	}

	if c.Bool("git-cli") {
		if len(cfg.Filters.Include) > 0 || len(cfg.Filters.Exclude) > 0 {
			return nil, model.Version{}, "", errors.New("--git-cli does not support include/exclude filters")
		}
		store, err := git.OpenCLI(ctx, repoPath, startRev)
		if err != nil {
			return nil, model.Version{}, "", fmt.Errorf("failed to read repository: %w", err)
		}
		start, stop, err := resolveRevisions(ctx, store.Resolve, startRev, stopRev)
		return store, start, stop, err
	}

	store, err := git.Open(git.StoreOptions{
		RepoPath: repoPath,
		Include:  cfg.Filters.Include,
		Exclude:  cfg.Filters.Exclude,
	})
	if err != nil {
		return nil, model.Version{}, "", fmt.Errorf("failed to open repository: %w", err)
	}
	start, stop, err := resolveRevisions(ctx, store.Resolve, startRev, stopRev)
	return store, start, stop, err
}

// resolveRevisions resolves the start revision and, when set, the stop
// revision to full commit ids.
func resolveRevisions(ctx context.Context, resolve func(context.Context, string) (model.Version, error), startRev, stopRev string) (model.Version, string, error) {
	start, err := resolve(ctx, startRev)
	if err != nil {
		return model.Version{}, "", fmt.Errorf("failed to resolve %q: %w", startRev, err)
	}
	if stopRev == "" {
		return start, "", nil
	}
	stop, err := resolve(ctx, stopRev)
	if err != nil {
		return model.Version{}, "", fmt.Errorf("failed to resolve range base %q: %w", stopRev, err)
	}
	return start, stop.ID, nil
}

// Tracker builds the history tracker from the configuration.
func (ctx *CommandContext) Tracker() *tracker.Tracker {
	return tracker.New(ctx.Store, ctx.Oracle, tracker.Options{
		OracleTimeout:   ctx.Config.Tracking.OracleTimeout(),
		MaxCommits:      ctx.Config.Tracking.MaxCommits,
		Since:           ctx.Since,
		StopAt:          ctx.StopAt,
		IntroduceAtRoot: ctx.Config.Tracking.IntroduceAtRoot,
		Logger:          ctx.Logger,
	})
}

// OutputOptions creates OutputOptions from CLI flags and configuration.
func (ctx *CommandContext) OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(ctx.Config.Output.Format),
		Top:        ctx.Config.Output.Top,
		OutputPath: c.String("output"),
		Explain:    c.Bool("explain"),
	}
}

// executeWithContext runs fn with a prepared CommandContext.
func executeWithContext(c *cli.Context, fn func(ctx *CommandContext, c *cli.Context) error) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	return fn(ctx, c)
}
