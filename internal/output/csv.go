package output

import (
	"fmt"
	"strings"

	"github.com/masmgr/codetracker-go/internal/history"
)

// CSVHistoryWriter writes history reports as CSV.
type CSVHistoryWriter struct{}

// Write outputs the history report as CSV.
func (w *CSVHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	return writeCSVEntries(limitTop(report.Info.Entries, options.Top), options)
}

// CSVBlameWriter writes blame reports as CSV.
type CSVBlameWriter struct{}

// Write outputs the blame report as CSV. A missing blame produces only the header.
func (w *CSVBlameWriter) Write(report *BlameReport, options OutputOptions) error {
	var entries []history.Entry
	if report.Entry != nil {
		entries = append(entries, *report.Entry)
	}
	return writeCSVEntries(entries, options)
}

func writeCSVEntries(entries []history.Entry, options OutputOptions) error {
	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	header := []string{"commit_id", "date", "change_types", "before", "after"}
	if options.Explain {
		header = append(header, "descriptions")
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, e := range entries {
		r := e.Record()
		row := []string{
			r.CommitID,
			r.Date,
			strings.Join(r.ChangeTypes, ";"),
			r.Before,
			r.After,
		}
		if options.Explain {
			row = append(row, strings.Join(e.Descriptions(), ";"))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
