package output

import (
	"testing"
)

func TestNewHistoryReportWriter(t *testing.T) {
	tests := []struct {
		format   OutputFormat
		expected string
	}{
		{FormatConsole, "*output.ConsoleHistoryWriter"},
		{FormatJSON, "*output.JSONHistoryWriter"},
		{FormatCSV, "*output.CSVHistoryWriter"},
		{FormatMarkdown, "*output.MarkdownHistoryWriter"},
		{FormatCI, "*output.CIHistoryWriter"},
		{"unknown", "*output.ConsoleHistoryWriter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w := NewHistoryReportWriter(tt.format)
			if got := typeName(w); got != tt.expected {
				t.Errorf("NewHistoryReportWriter(%q) = %s, expected %s", tt.format, got, tt.expected)
			}
		})
	}
}

func TestNewBlameReportWriter(t *testing.T) {
	tests := []struct {
		format   OutputFormat
		expected string
	}{
		{FormatConsole, "*output.ConsoleBlameWriter"},
		{FormatJSON, "*output.JSONBlameWriter"},
		{FormatCI, "*output.JSONBlameWriter"},
		{FormatCSV, "*output.CSVBlameWriter"},
		{FormatMarkdown, "*output.MarkdownBlameWriter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w := NewBlameReportWriter(tt.format)
			if got := typeName(w); got != tt.expected {
				t.Errorf("NewBlameReportWriter(%q) = %s, expected %s", tt.format, got, tt.expected)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *ConsoleHistoryWriter:
		return "*output.ConsoleHistoryWriter"
	case *JSONHistoryWriter:
		return "*output.JSONHistoryWriter"
	case *CSVHistoryWriter:
		return "*output.CSVHistoryWriter"
	case *MarkdownHistoryWriter:
		return "*output.MarkdownHistoryWriter"
	case *CIHistoryWriter:
		return "*output.CIHistoryWriter"
	case *ConsoleBlameWriter:
		return "*output.ConsoleBlameWriter"
	case *JSONBlameWriter:
		return "*output.JSONBlameWriter"
	case *CSVBlameWriter:
		return "*output.CSVBlameWriter"
	case *MarkdownBlameWriter:
		return "*output.MarkdownBlameWriter"
	default:
		return "unknown"
	}
}
