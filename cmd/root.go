package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/codetracker-go/config"
	"github.com/masmgr/codetracker-go/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "codetracker",
		Usage:   "Change history and blame for code elements across Git commits",
		Version: "1.0.0",
		Commands: []*cli.Command{
			TrackCmd(),
			BlameCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:     "session",
			Aliases:  []string{"s"},
			Usage:    "YAML session file holding the start element and recorded diffs",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "start",
			Usage: "Commit, branch or tag to start from (default: session start or HEAD)",
		},
		&cli.StringFlag{
			Name:  "range",
			Usage: "Revision range base..head; the walk stops at base",
		},
		&cli.StringFlag{
			Name:  "since",
			Usage: "Ignore commits older than this date (YYYY-MM-DD)",
		},
		&cli.IntFlag{
			Name:  "max-commits",
			Usage: "Maximum number of commits to analyze (0: config value)",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "Per-call oracle timeout in seconds (0: config value)",
		},
		&cli.BoolFlag{
			Name:  "introduce-at-root",
			Usage: "Record an Introduced change at the repository's first commit",
		},
		&cli.BoolFlag{
			Name:  "git-cli",
			Usage: "Read ancestry through the git executable instead of go-git",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns of paths whose commits are visited (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns of paths ignored when visiting commits (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of newest changes to show (0: all)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "explain",
			Usage: "Show change descriptions",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Diagnostic log level (debug, info, warn, error)",
		},
	}
}

// parseDateFlag parses a date string flag.
func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return &t, nil
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// loadConfig loads configuration from file or defaults and applies CLI overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	if n := c.Int("max-commits"); n > 0 {
		cfg.Tracking.MaxCommits = n
	}
	if s := c.Int("timeout"); s > 0 {
		cfg.Tracking.OracleTimeoutSeconds = s
	}
	if c.Bool("introduce-at-root") {
		cfg.Tracking.IntroduceAtRoot = true
	}
	if f := c.String("format"); f != "" {
		cfg.Output.Format = f
	}
	if c.IsSet("top") {
		cfg.Output.Top = c.Int("top")
	}
	if l := c.String("log-level"); l != "" {
		cfg.Logging.Level = l
	}

	return cfg, nil
}

// Run executes the CLI application.
func Run() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
