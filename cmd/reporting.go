package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/codetracker-go/internal/history"
	"github.com/masmgr/codetracker-go/internal/output"
)

func writeHistoryReport(ctx *CommandContext, c *cli.Context, info history.Info) error {
	report := &output.HistoryReport{
		RepoPath:    ctx.RepoPath,
		Element:     ctx.Start.String(),
		StartCommit: ctx.Start.Version.ID,
		GeneratedAt: time.Now(),
		Info:        info,
		Stats:       history.Summarize(info.Entries),
	}
	opts := ctx.OutputOptions(c)
	writer := output.NewHistoryReportWriter(opts.Format)
	return writer.Write(report, opts)
}

func writeBlameReport(ctx *CommandContext, c *cli.Context, entry *history.Entry, truncated bool) error {
	report := &output.BlameReport{
		RepoPath:    ctx.RepoPath,
		Element:     ctx.Start.String(),
		StartCommit: ctx.Start.Version.ID,
		GeneratedAt: time.Now(),
		Entry:       entry,
		Truncated:   truncated,
	}
	opts := ctx.OutputOptions(c)
	writer := output.NewBlameReportWriter(opts.Format)
	return writer.Write(report, opts)
}
