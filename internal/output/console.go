package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/masmgr/codetracker-go/internal/history"
	"github.com/masmgr/codetracker-go/internal/model"
)

// ConsoleHistoryWriter writes history reports to the console.
type ConsoleHistoryWriter struct{}

// Write outputs the history report to the console.
func (w *ConsoleHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	entries := limitTop(report.Info.Entries, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	header := color.New(color.FgGreen)
	header.Fprintln(out, "Change History")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Element: %s\n", report.Element)
	fmt.Fprintf(out, "Start commit: %s\n", shortCommit(report.StartCommit))
	fmt.Fprintf(out, "Changes: %d in %d commits (%d behavioural)\n\n",
		report.Stats.Entries, report.Stats.Commits, report.Stats.Meaningful)

	if len(entries) == 0 {
		fmt.Fprintln(out, "No changes found.")
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tCommit\tDate\tChanges\tBefore\tAfter")
		for i, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				i+1,
				shortCommit(e.CommitID()),
				formatDate(e),
				colorKinds(e.Kinds()),
				e.Before.String(),
				e.After.String(),
			)
			if options.Explain {
				for _, d := range e.Descriptions() {
					fmt.Fprintf(tw, "\t\t\t  %s\t\t\n", d)
				}
			}
		}
		tw.Flush()
	}

	writeConsoleTruncation(out, report.Info.Truncated)
	return nil
}

// ConsoleBlameWriter writes blame reports to the console.
type ConsoleBlameWriter struct{}

// Write outputs the blame report to the console.
func (w *ConsoleBlameWriter) Write(report *BlameReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	color.New(color.FgGreen).Fprintln(out, "Blame")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Element: %s\n\n", report.Element)

	if report.Entry == nil {
		fmt.Fprintln(out, "No behavioural change found.")
	} else {
		writeConsoleEntry(out, *report.Entry, options.Explain)
	}

	writeConsoleTruncation(out, report.Truncated)
	return nil
}

func writeConsoleEntry(out io.Writer, e history.Entry, explain bool) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Commit:\t%s\n", e.CommitID())
	fmt.Fprintf(tw, "Date:\t%s\n", formatDate(e))
	fmt.Fprintf(tw, "Changes:\t%s\n", colorKinds(e.Kinds()))
	fmt.Fprintf(tw, "Before:\t%s\n", e.Before.String())
	fmt.Fprintf(tw, "After:\t%s\n", e.After.String())
	if explain {
		for _, d := range e.Descriptions() {
			fmt.Fprintf(tw, "\t%s\n", d)
		}
	}
	tw.Flush()
}

func writeConsoleTruncation(out io.Writer, truncated bool) {
	if !truncated {
		return
	}
	fmt.Fprintln(out)
	color.New(color.FgYellow).Fprintln(out, "Warning: history is incomplete (oracle timeout, unresolved element or walk limit)")
}

// colorKinds joins change labels, highlighting behavioural changes.
func colorKinds(kinds []model.ChangeKind) string {
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		switch {
		case k == model.ChangeIntroduced:
			labels[i] = color.CyanString(k.String())
		case !k.Cosmetic():
			labels[i] = color.RedString(k.String())
		default:
			labels[i] = k.String()
		}
	}
	return strings.Join(labels, ", ")
}
