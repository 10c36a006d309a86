package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renameThenBodySession records f renamed to g in c1 and g's body changed in c2.
const renameThenBodySession = `
commits:
  - id: c0
    time: 2024-01-01T10:00:00Z
  - id: c1
    parent: c0
    time: 2024-01-02T10:00:00Z
  - id: c2
    parent: c1
    time: 2024-01-03T10:00:00Z
start:
  version: c2
  element: {kind: method, container: pkg/Main, name: g, signature: g(int)}
transitions:
  - child: c2
    diffs:
      - container: pkg/Main
        matched:
          - before: {kind: method, container: pkg/Main, name: g, signature: g(int)}
            after: {kind: method, container: pkg/Main, name: g, signature: g(int)}
            changes: [Body Change]
  - child: c1
    refactorings:
      - kind: Rename
        description: rename f to g
        before: [{kind: method, container: pkg/Main, name: f, signature: f(int)}]
        after: [{kind: method, container: pkg/Main, name: g, signature: g(int)}]
`

type jsonHistory struct {
	Element     string `json:"element"`
	StartCommit string `json:"startCommit"`
	Truncated   bool   `json:"truncated"`
	Changes     []struct {
		CommitID    string   `json:"commitId"`
		Date        string   `json:"date"`
		Before      string   `json:"before"`
		After       string   `json:"after"`
		ChangeTypes []string `json:"changeTypes"`
	} `json:"changes"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runApp runs the CLI with an empty configuration file so that no user
// configuration leaks into the test.
func runApp(t *testing.T, args ...string) error {
	t.Helper()
	cfgPath := writeFile(t, t.TempDir(), ".codetracker.json", "{}")
	app := App()
	app.ErrWriter = io.Discard
	return app.Run(append([]string{"codetracker", "--config", cfgPath}, args...))
}

func TestTrackCommand_SessionAncestry(t *testing.T) {
	dir := t.TempDir()
	session := writeFile(t, dir, "session.yaml", renameThenBodySession)
	out := filepath.Join(dir, "history.json")

	require.NoError(t, runApp(t, "track", "--session", session, "--format", "json", "--output", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var h jsonHistory
	require.NoError(t, json.Unmarshal(data, &h))

	assert.Equal(t, "pkg/Main#g(int)", h.Element)
	assert.Equal(t, "c2", h.StartCommit)
	assert.False(t, h.Truncated)
	require.Len(t, h.Changes, 2)
	assert.Equal(t, "c2", h.Changes[0].CommitID)
	assert.Equal(t, "2024-01-03T10:00:00", h.Changes[0].Date)
	assert.Equal(t, []string{"Body Change"}, h.Changes[0].ChangeTypes)
	assert.Equal(t, "c1", h.Changes[1].CommitID)
	assert.Equal(t, "pkg/Main#f(int)", h.Changes[1].Before)
	assert.Equal(t, []string{"Rename"}, h.Changes[1].ChangeTypes)
}

func TestTrackCommand_RangeStopsWalk(t *testing.T) {
	dir := t.TempDir()
	session := writeFile(t, dir, "session.yaml", renameThenBodySession)
	out := filepath.Join(dir, "history.json")

	require.NoError(t, runApp(t, "track", "--session", session, "--range", "c1..c2", "--format", "json", "--output", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var h jsonHistory
	require.NoError(t, json.Unmarshal(data, &h))

	require.Len(t, h.Changes, 1)
	assert.Equal(t, "c2", h.Changes[0].CommitID)
	assert.False(t, h.Truncated)
}

func TestTrackCommand_RangeBaseMatchesWholeID(t *testing.T) {
	session := `
commits:
  - id: c1
    time: 2024-01-01T10:00:00Z
  - id: c10
    parent: c1
    time: 2024-01-02T10:00:00Z
  - id: c12
    parent: c10
    time: 2024-01-03T10:00:00Z
start:
  version: c12
  element: {kind: method, container: pkg/Main, name: g, signature: g(int)}
transitions:
  - child: c12
    diffs:
      - container: pkg/Main
        matched:
          - before: {kind: method, container: pkg/Main, name: g, signature: g(int)}
            after: {kind: method, container: pkg/Main, name: g, signature: g(int)}
            changes: [Body Change]
  - child: c10
    diffs:
      - container: pkg/Main
        matched:
          - before: {kind: method, container: pkg/Main, name: g, signature: g(int)}
            after: {kind: method, container: pkg/Main, name: g, signature: g(int)}
            changes: [Body Change]
`
	dir := t.TempDir()
	path := writeFile(t, dir, "session.yaml", session)
	out := filepath.Join(dir, "history.json")

	require.NoError(t, runApp(t, "track", "--session", path, "--range", "c1..c12", "--format", "json", "--output", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var h jsonHistory
	require.NoError(t, json.Unmarshal(data, &h))

	require.Len(t, h.Changes, 2)
	assert.Equal(t, "c12", h.Changes[0].CommitID)
	assert.Equal(t, "c10", h.Changes[1].CommitID)
}

func TestBlameCommand(t *testing.T) {
	dir := t.TempDir()
	session := writeFile(t, dir, "session.yaml", renameThenBodySession)
	out := filepath.Join(dir, "blame.json")

	require.NoError(t, runApp(t, "blame", "--session", session, "--format", "json", "--output", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var b struct {
		Found bool `json:"found"`
		Blame struct {
			CommitID    string   `json:"commitId"`
			ChangeTypes []string `json:"changeTypes"`
		} `json:"blame"`
	}
	require.NoError(t, json.Unmarshal(data, &b))
	assert.True(t, b.Found)
	assert.Equal(t, "c2", b.Blame.CommitID)
	assert.Equal(t, []string{"Body Change"}, b.Blame.ChangeTypes)
}

func TestTrackCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	session := writeFile(t, dir, "session.yaml", renameThenBodySession)
	noCommits := writeFile(t, dir, "no-commits.yaml", `
start:
  version: HEAD
  element: {kind: method, container: Main, name: g, signature: g(int)}
`)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "MissingSession", args: []string{"track"}, wantErr: "session"},
		{name: "UnreadableSession", args: []string{"track", "--session", filepath.Join(dir, "nope.yaml")}, wantErr: "failed to load session"},
		{name: "UnknownStart", args: []string{"track", "--session", session, "--start", "c9"}, wantErr: "unknown version"},
		{name: "BadSince", args: []string{"track", "--session", session, "--since", "yesterday"}, wantErr: "invalid since date"},
		{name: "UnknownRangeBase", args: []string{"track", "--session", session, "--range", "c9..c2"}, wantErr: "unknown version"},
		{name: "GitCLIWithFilters", args: []string{"track", "--session", noCommits, "--repo", dir, "--git-cli", "--include", "**/*.java"}, wantErr: "--git-cli does not support include/exclude filters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runApp(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTrackCommand_GitRepository(t *testing.T) {
	repoDir := t.TempDir()
	repo, err := gogit.PlainInit(repoDir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var hashes []string
	for i := 0; i < 2; i++ {
		writeFile(t, repoDir, "Main.java", fmt.Sprintf("class Main { int g(int x) { return %d; } }\n", i))
		_, err := wt.Add("Main.java")
		require.NoError(t, err)
		sig := &object.Signature{Name: "Test", Email: "test@example.com", When: base.Add(time.Duration(i) * time.Hour)}
		h, err := wt.Commit(fmt.Sprintf("commit %d", i), &gogit.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
		hashes = append(hashes, h.String())
	}

	session := strings.Join([]string{
		"start:",
		"  element: {kind: method, container: Main, name: g, signature: g(int)}",
		"transitions:",
		"  - child: " + hashes[1],
		"    diffs:",
		"      - container: Main",
		"        matched:",
		"          - before: {kind: method, container: Main, name: g, signature: g(int)}",
		"            after: {kind: method, container: Main, name: g, signature: g(int)}",
		"            changes: [body]",
	}, "\n")
	dir := t.TempDir()
	sessionPath := writeFile(t, dir, "session.yaml", session)
	out := filepath.Join(dir, "history.ndjson")

	require.NoError(t, runApp(t, "track", "--repo", repoDir, "--session", sessionPath, "--format", "ci", "--output", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var summary struct {
		StartCommit string `json:"startCommit"`
		Entries     int    `json:"entries"`
		Blame       string `json:"blame"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &summary))
	assert.Equal(t, hashes[1], summary.StartCommit)
	assert.Equal(t, 1, summary.Entries)
	assert.Equal(t, hashes[1], summary.Blame)
}

func TestTrackCommand_GitCLIRangeFromTag(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}

	repoDir := t.TempDir()
	repo, err := gogit.PlainInit(repoDir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var hashes []string
	for i := 0; i < 3; i++ {
		writeFile(t, repoDir, "Main.java", fmt.Sprintf("class Main { int g(int x) { return %d; } }\n", i))
		_, err := wt.Add("Main.java")
		require.NoError(t, err)
		sig := &object.Signature{Name: "Test", Email: "test@example.com", When: base.Add(time.Duration(i) * time.Hour)}
		h, err := wt.Commit(fmt.Sprintf("commit %d", i), &gogit.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
		hashes = append(hashes, h.String())
	}
	_, err = repo.CreateTag("v1", plumbing.NewHash(hashes[1]), nil)
	require.NoError(t, err)

	lines := []string{
		"start:",
		"  element: {kind: method, container: Main, name: g, signature: g(int)}",
		"transitions:",
	}
	for _, h := range hashes[1:] {
		lines = append(lines,
			"  - child: "+h,
			"    diffs:",
			"      - container: Main",
			"        matched:",
			"          - before: {kind: method, container: Main, name: g, signature: g(int)}",
			"            after: {kind: method, container: Main, name: g, signature: g(int)}",
			"            changes: [body]",
		)
	}
	dir := t.TempDir()
	sessionPath := writeFile(t, dir, "session.yaml", strings.Join(lines, "\n"))
	out := filepath.Join(dir, "history.json")

	require.NoError(t, runApp(t, "track", "--repo", repoDir, "--session", sessionPath, "--git-cli", "--range", "v1..HEAD", "--format", "json", "--output", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var h jsonHistory
	require.NoError(t, json.Unmarshal(data, &h))

	assert.Equal(t, hashes[2], h.StartCommit)
	require.Len(t, h.Changes, 1)
	assert.Equal(t, hashes[2], h.Changes[0].CommitID)
}
