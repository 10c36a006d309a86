package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/codetracker-go/internal/history"
)

// BlameCmd returns the blame command.
func BlameCmd() *cli.Command {
	return &cli.Command{
		Name:    "blame",
		Aliases: []string{"b"},
		Usage:   "Show the newest change that introduced or altered a code element's body",
		Flags:   commonFlags(),
		Action:  blameAction,
	}
}

func blameAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		result, err := ctx.Tracker().Track(c.Context, ctx.Start)
		if err != nil {
			return err
		}

		info := history.History(result.Graph, ctx.Start)
		var entry *history.Entry
		if e, ok := history.BlameEntries(info.Entries); ok {
			entry = &e
		}
		return writeBlameReport(ctx, c, entry, info.Truncated)
	})
}
