package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/codetracker-go/internal/history"
)

// TrackCmd returns the track command.
func TrackCmd() *cli.Command {
	return &cli.Command{
		Name:    "track",
		Aliases: []string{"t", "history"},
		Usage:   "List every change of a code element, newest first",
		Flags:   commonFlags(),
		Action:  trackAction,
	}
}

func trackAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		result, err := ctx.Tracker().Track(c.Context, ctx.Start)
		if err != nil {
			return err
		}

		info := history.History(result.Graph, ctx.Start)
		ctx.Logger.Info("history built",
			"entries", len(info.Entries),
			"commits", result.Commits,
			"truncated", info.Truncated,
		)

		return writeHistoryReport(ctx, c, info)
	})
}
