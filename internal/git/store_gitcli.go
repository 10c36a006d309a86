package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/masmgr/codetracker-go/internal/model"
)

// CLIStore loads the first-parent chain once through the git executable and
// answers ancestry queries from memory. It is faster than Store on large
// repositories because it never inflates commit objects one by one.
type CLIStore struct {
	*MemoryStore
	repoPath string
	tip      model.Version
}

// OpenCLI runs `git log --first-parent` from rev (HEAD when empty).
func OpenCLI(ctx context.Context, repoPath, rev string) (*CLIStore, error) {
	// Each commit line is prefixed by 0x1e (record separator) with NUL-separated fields.
	const format = "%x1e%H%x00%P%x00%cI"

	args := []string{
		"-C", repoPath,
		"log",
		"--no-color",
		"--first-parent",
		"--pretty=format:" + format,
	}

	rev = strings.TrimSpace(rev)
	if rev != "" && !strings.EqualFold(rev, "HEAD") {
		args = append(args, rev)
	}

	out, err := exec.CommandContext(ctx, "git", args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git log failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	commits, err := parseLogRecords(out)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, fmt.Errorf("git log returned no commits for %q", rev)
	}

	return &CLIStore{
		MemoryStore: NewMemoryStore(commits),
		repoPath:    repoPath,
		tip:         commits[0].Version,
	}, nil
}

// Tip returns the newest commit loaded, i.e. the resolved start revision.
func (s *CLIStore) Tip() model.Version {
	return s.tip
}

// Resolve turns a branch name, tag, revision expression or abbreviated hash
// into a Version through `git rev-parse`. Commits outside the loaded chain
// resolve with an unknown time.
func (s *CLIStore) Resolve(ctx context.Context, rev string) (model.Version, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		rev = "HEAD"
	}
	out, err := exec.CommandContext(ctx, "git", "-C", s.repoPath, "rev-parse", "--verify", "--quiet", rev+"^{commit}").Output()
	if err != nil {
		return model.Version{}, fmt.Errorf("resolving %q: %w", rev, ErrUnknownVersion)
	}
	id := strings.TrimSpace(string(out))
	if v, ok := s.Version(id); ok {
		return v, nil
	}
	return model.Version{ID: id}, nil
}

// parseLogRecords parses 0x1e-framed `sha\0parents\0date` records, newest first.
func parseLogRecords(out []byte) ([]Commit, error) {
	records := bytes.Split(out, []byte{0x1e})
	commits := make([]Commit, 0, len(records))

	for _, rec := range records {
		rec = bytes.TrimRight(rec, "\r\n")
		if len(rec) == 0 {
			continue
		}

		fields := bytes.SplitN(rec, []byte{0x00}, 3)
		if len(fields) < 3 {
			return nil, fmt.Errorf("unexpected git log record format: %q", string(rec))
		}

		sha := strings.TrimSpace(string(fields[0]))
		when, err := time.Parse(time.RFC3339, strings.TrimSpace(string(fields[2])))
		if err != nil {
			return nil, fmt.Errorf("parse committer date: %w", err)
		}

		commits = append(commits, Commit{
			Version: model.Version{ID: sha, Time: when},
			Parents: strings.Fields(string(fields[1])),
		})
	}

	return commits, nil
}
