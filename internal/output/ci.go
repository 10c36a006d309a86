package output

import (
	"github.com/masmgr/codetracker-go/internal/history"
)

// CIHistoryWriter writes history reports as NDJSON (one JSON object per line) for CI pipelines.
type CIHistoryWriter struct{}

// CISummary is the first line of CI output, containing aggregate statistics.
type CISummary struct {
	Type        string `json:"type"`
	Element     string `json:"element"`
	StartCommit string `json:"startCommit"`
	Entries     int    `json:"entries"`
	Commits     int    `json:"commits"`
	Meaningful  int    `json:"meaningful"`
	Truncated   bool   `json:"truncated"`
	Blame       string `json:"blame,omitempty"`
}

// CIChangeEntry represents a single change entry in CI output.
type CIChangeEntry struct {
	Type string `json:"type"`
	history.Record
}

// Write outputs the history report as NDJSON.
func (w *CIHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	entries := limitTop(report.Info.Entries, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	summary := CISummary{
		Type:        "summary",
		Element:     report.Element,
		StartCommit: report.StartCommit,
		Entries:     report.Stats.Entries,
		Commits:     report.Stats.Commits,
		Meaningful:  report.Stats.Meaningful,
		Truncated:   report.Info.Truncated,
	}
	if b, ok := history.BlameEntries(report.Info.Entries); ok {
		summary.Blame = b.CommitID()
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, e := range entries {
		if err := writeNDJSONLine(out, CIChangeEntry{Type: "change", Record: e.Record()}); err != nil {
			return err
		}
	}

	return nil
}
