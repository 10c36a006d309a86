package output

import (
	"time"

	"github.com/masmgr/codetracker-go/internal/history"
)

// JSONHistoryWriter writes history reports as JSON.
type JSONHistoryWriter struct{}

// JSONHistoryOutput represents the JSON output structure for history reports.
type JSONHistoryOutput struct {
	RepoPath    string           `json:"repoPath"`
	Element     string           `json:"element"`
	StartCommit string           `json:"startCommit"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Truncated   bool             `json:"truncated"`
	Summary     JSONSummary      `json:"summary"`
	Changes     []history.Record `json:"changes"`
}

// JSONSummary holds the aggregate statistics of a history.
type JSONSummary struct {
	Entries     int            `json:"entries"`
	Commits     int            `json:"commits"`
	Meaningful  int            `json:"meaningful"`
	ByKind      map[string]int `json:"byKind"`
	FirstChange string         `json:"firstChange,omitempty"`
	LastChange  string         `json:"lastChange,omitempty"`
}

// JSONDescribedRecord extends a record with change descriptions.
type JSONDescribedRecord struct {
	history.Record
	Descriptions []string `json:"descriptions,omitempty"`
}

// Write outputs the history report as JSON.
func (w *JSONHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	entries := limitTop(report.Info.Entries, options.Top)

	records := make([]history.Record, len(entries))
	for i, e := range entries {
		records[i] = e.Record()
	}

	output := JSONHistoryOutput{
		RepoPath:    report.RepoPath,
		Element:     report.Element,
		StartCommit: report.StartCommit,
		GeneratedAt: report.GeneratedAt,
		Truncated:   report.Info.Truncated,
		Summary:     summaryOf(report.Stats),
		Changes:     records,
	}
	if !options.Explain {
		return writeJSON(output, options.OutputPath)
	}

	described := make([]JSONDescribedRecord, len(entries))
	for i, e := range entries {
		described[i] = JSONDescribedRecord{Record: records[i], Descriptions: e.Descriptions()}
	}
	return writeJSON(struct {
		JSONHistoryOutput
		Changes []JSONDescribedRecord `json:"changes"`
	}{JSONHistoryOutput: output, Changes: described}, options.OutputPath)
}

func summaryOf(s history.Stats) JSONSummary {
	byKind := make(map[string]int, len(s.ByKind))
	for k, n := range s.ByKind {
		byKind[k.String()] = n
	}
	out := JSONSummary{
		Entries:    s.Entries,
		Commits:    s.Commits,
		Meaningful: s.Meaningful,
		ByKind:     byKind,
	}
	if !s.FirstChange.IsZero() {
		out.FirstChange = s.FirstChange.Format(reportDateTimeLayout)
		out.LastChange = s.LastChange.Format(reportDateTimeLayout)
	}
	return out
}

// JSONBlameWriter writes blame reports as JSON.
type JSONBlameWriter struct{}

// JSONBlameOutput represents the JSON output structure for blame reports.
type JSONBlameOutput struct {
	RepoPath    string          `json:"repoPath"`
	Element     string          `json:"element"`
	StartCommit string          `json:"startCommit"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Truncated   bool            `json:"truncated"`
	Found       bool            `json:"found"`
	Blame       *history.Record `json:"blame"`
}

// Write outputs the blame report as JSON.
func (w *JSONBlameWriter) Write(report *BlameReport, options OutputOptions) error {
	output := JSONBlameOutput{
		RepoPath:    report.RepoPath,
		Element:     report.Element,
		StartCommit: report.StartCommit,
		GeneratedAt: report.GeneratedAt,
		Truncated:   report.Truncated,
		Found:       report.Entry != nil,
	}
	if report.Entry != nil {
		r := report.Entry.Record()
		output.Blame = &r
	}
	return writeJSON(output, options.OutputPath)
}
