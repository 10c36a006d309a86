package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/masmgr/codetracker-go/internal/history"
	"github.com/masmgr/codetracker-go/internal/model"
)

func init() {
	color.NoColor = true
}

var testTime = time.Date(2023, 3, 12, 11, 9, 14, 0, time.UTC)

func testMethod(name string, id string, day int) model.CodeElement {
	return model.CodeElement{
		Kind:      model.KindMethod,
		Container: "pkg/Main",
		Name:      name,
		Signature: name + "(int)",
		Version:   model.Version{ID: id, Time: time.Date(2023, 3, day, 11, 9, 14, 0, time.UTC)},
	}
}

// testEntries returns a body change followed by an older rename.
func testEntries() []history.Entry {
	return []history.Entry{
		{
			Before:  testMethod("g", "bbbbbbbbbbbb", 11),
			After:   testMethod("g", "cccccccccccc", 12),
			Changes: []model.Change{{Kind: model.ChangeBody, Description: "body of g changed"}},
			Seq:     2,
		},
		{
			Before:  testMethod("f", "aaaaaaaaaaaa", 10),
			After:   testMethod("g", "bbbbbbbbbbbb", 11),
			Changes: []model.Change{{Kind: model.ChangeRename, Description: "f renamed to g"}},
			Seq:     1,
		},
	}
}

func testHistoryReport(truncated bool) *HistoryReport {
	entries := testEntries()
	return &HistoryReport{
		RepoPath:    "/repo",
		Element:     "pkg/Main#g(int)",
		StartCommit: "cccccccccccc",
		GeneratedAt: testTime,
		Info:        history.Info{Start: entries[0].After, Entries: entries, Truncated: truncated},
		Stats:       history.Summarize(entries),
	}
}

func testBlameReport(found bool) *BlameReport {
	r := &BlameReport{
		RepoPath:    "/repo",
		Element:     "pkg/Main#g(int)",
		StartCommit: "cccccccccccc",
		GeneratedAt: testTime,
	}
	if found {
		e := testEntries()[0]
		r.Entry = &e
	}
	return r
}

func tempOutputPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}
	return string(data)
}
