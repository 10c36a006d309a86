package output

import (
	"time"

	"github.com/masmgr/codetracker-go/internal/history"
)

// Compile-time interface conformance checks.
// These ensure that all writer types correctly implement their respective interfaces.
var (
	// HistoryReportWriter implementations
	_ HistoryReportWriter = (*ConsoleHistoryWriter)(nil)
	_ HistoryReportWriter = (*JSONHistoryWriter)(nil)
	_ HistoryReportWriter = (*CSVHistoryWriter)(nil)
	_ HistoryReportWriter = (*MarkdownHistoryWriter)(nil)
	_ HistoryReportWriter = (*CIHistoryWriter)(nil)

	// BlameReportWriter implementations
	_ BlameReportWriter = (*ConsoleBlameWriter)(nil)
	_ BlameReportWriter = (*JSONBlameWriter)(nil)
	_ BlameReportWriter = (*CSVBlameWriter)(nil)
	_ BlameReportWriter = (*MarkdownBlameWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
	// Explain adds the change descriptions recorded by the oracle.
	Explain bool
}

// HistoryReport holds the change history of one tracked element.
type HistoryReport struct {
	RepoPath    string
	Element     string
	StartCommit string
	GeneratedAt time.Time
	Info        history.Info
	Stats       history.Stats
}

// BlameReport holds the blame of one tracked element. Entry is nil when no
// behavioural change was found.
type BlameReport struct {
	RepoPath    string
	Element     string
	StartCommit string
	GeneratedAt time.Time
	Entry       *history.Entry
	Truncated   bool
}

// HistoryReportWriter writes history reports.
type HistoryReportWriter interface {
	Write(report *HistoryReport, options OutputOptions) error
}

// BlameReportWriter writes blame reports.
type BlameReportWriter interface {
	Write(report *BlameReport, options OutputOptions) error
}

// NewHistoryReportWriter creates a report writer for the specified format.
func NewHistoryReportWriter(format OutputFormat) HistoryReportWriter {
	switch format {
	case FormatJSON:
		return &JSONHistoryWriter{}
	case FormatCSV:
		return &CSVHistoryWriter{}
	case FormatMarkdown:
		return &MarkdownHistoryWriter{}
	case FormatCI:
		return &CIHistoryWriter{}
	default:
		return &ConsoleHistoryWriter{}
	}
}

// NewBlameReportWriter creates a blame report writer for the specified format.
// The CI format falls back to JSON.
func NewBlameReportWriter(format OutputFormat) BlameReportWriter {
	switch format {
	case FormatJSON, FormatCI:
		return &JSONBlameWriter{}
	case FormatCSV:
		return &CSVBlameWriter{}
	case FormatMarkdown:
		return &MarkdownBlameWriter{}
	default:
		return &ConsoleBlameWriter{}
	}
}
