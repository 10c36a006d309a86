package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/masmgr/codetracker-go/internal/history"
)

// MarkdownHistoryWriter writes history reports as Markdown.
type MarkdownHistoryWriter struct{}

// Write outputs the history report as Markdown.
func (w *MarkdownHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	entries := limitTop(report.Info.Entries, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	// Header
	fmt.Fprintln(out, "# Change History")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Element:** `%s`\n\n", report.Element)
	fmt.Fprintf(out, "**Start Commit:** %s\n\n", shortCommit(report.StartCommit))
	fmt.Fprintf(out, "**Changes:** %d in %d commits (%d behavioural)\n\n",
		report.Stats.Entries, report.Stats.Commits, report.Stats.Meaningful)
	writeMarkdownTruncation(out, report.Info.Truncated)

	fmt.Fprintln(out, "## Changes")
	fmt.Fprintln(out)
	if len(entries) == 0 {
		fmt.Fprintln(out, "No changes found.")
		return nil
	}

	writeMarkdownTableHeader(out, options.Explain)
	for i, e := range entries {
		writeMarkdownRow(out, i+1, e, options.Explain)
	}

	if kinds := report.Stats.Kinds(); len(kinds) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Change Kinds")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| Kind | Count |")
		fmt.Fprintln(out, "|------|-------|")
		for _, k := range kinds {
			fmt.Fprintf(out, "| %s | %d |\n", k, report.Stats.ByKind[k])
		}
	}

	return nil
}

// MarkdownBlameWriter writes blame reports as Markdown.
type MarkdownBlameWriter struct{}

// Write outputs the blame report as Markdown.
func (w *MarkdownBlameWriter) Write(report *BlameReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	fmt.Fprintln(out, "# Blame")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Element:** `%s`\n\n", report.Element)
	writeMarkdownTruncation(out, report.Truncated)

	if report.Entry == nil {
		fmt.Fprintln(out, "No behavioural change found.")
		return nil
	}
	writeMarkdownTableHeader(out, options.Explain)
	writeMarkdownRow(out, 1, *report.Entry, options.Explain)
	return nil
}

func writeMarkdownTruncation(out io.Writer, truncated bool) {
	if truncated {
		fmt.Fprintln(out, "> **Warning:** history is incomplete.")
		fmt.Fprintln(out)
	}
}

func writeMarkdownTableHeader(out io.Writer, explain bool) {
	if explain {
		fmt.Fprintln(out, "| # | Commit | Date | Changes | Before | After | Details |")
		fmt.Fprintln(out, "|---|--------|------|---------|--------|-------|---------|")
		return
	}
	fmt.Fprintln(out, "| # | Commit | Date | Changes | Before | After |")
	fmt.Fprintln(out, "|---|--------|------|---------|--------|-------|")
}

func writeMarkdownRow(out io.Writer, n int, e history.Entry, explain bool) {
	r := e.Record()
	fmt.Fprintf(out, "| %d | `%s` | %s | %s | `%s` | `%s` |",
		n,
		shortCommit(r.CommitID),
		formatDate(e),
		escapeMarkdown(strings.Join(r.ChangeTypes, ", ")),
		r.Before,
		r.After,
	)
	if explain {
		fmt.Fprintf(out, " %s |", escapeMarkdown(truncateText(strings.Join(e.Descriptions(), "; "), 80)))
	}
	fmt.Fprintln(out)
}
