package git

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func TestParseLogRecords(t *testing.T) {
	out := []byte{}
	out = append(out, 0x1e)
	out = append(out, []byte("bbb\x00aaa\x002024-01-01T13:00:00Z\n")...)
	out = append(out, 0x1e)
	out = append(out, []byte("aaa\x00\x002024-01-01T12:00:00+00:00")...)

	commits, err := parseLogRecords(out)
	if err != nil {
		t.Fatalf("parseLogRecords: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("commits = %d, expected 2", len(commits))
	}
	if commits[0].Version.ID != "bbb" || len(commits[0].Parents) != 1 || commits[0].Parents[0] != "aaa" {
		t.Errorf("commits[0] = %#v", commits[0])
	}
	if commits[1].Version.ID != "aaa" || len(commits[1].Parents) != 0 {
		t.Errorf("commits[1] = %#v", commits[1])
	}
	if !commits[0].Version.Time.After(commits[1].Version.Time) {
		t.Errorf("expected newest first, got %v then %v", commits[0].Version.Time, commits[1].Version.Time)
	}
}

func TestParseLogRecords_MergeParents(t *testing.T) {
	out := append([]byte{0x1e}, []byte("m\x00p1 p2\x002024-01-01T12:00:00Z")...)

	commits, err := parseLogRecords(out)
	if err != nil {
		t.Fatalf("parseLogRecords: %v", err)
	}
	if len(commits) != 1 || len(commits[0].Parents) != 2 || commits[0].Parents[0] != "p1" {
		t.Fatalf("commits = %#v", commits)
	}
}

func TestParseLogRecords_BadRecord(t *testing.T) {
	out := append([]byte{0x1e}, []byte("only-sha")...)
	if _, err := parseLogRecords(out); err == nil {
		t.Fatal("expected error for malformed record")
	}
}

func TestParseLogRecords_BadDate(t *testing.T) {
	out := append([]byte{0x1e}, []byte("a\x00\x00yesterday")...)
	if _, err := parseLogRecords(out); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestCLIStore_Resolve(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}

	r := newTestRepo(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.write("a.txt", "1")
	r.commit("first", base)
	r.write("a.txt", "2")
	tagged := r.commit("second", base.Add(time.Hour))
	r.write("a.txt", "3")
	r.commit("third", base.Add(2*time.Hour))
	if _, err := r.repo.CreateTag("v1", tagged, nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	ctx := context.Background()
	store, err := OpenCLI(ctx, r.dir, "")
	if err != nil {
		t.Fatalf("OpenCLI: %v", err)
	}

	for _, rev := range []string{"v1", tagged.String()[:7], "HEAD~1"} {
		v, err := store.Resolve(ctx, rev)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", rev, err)
		}
		if v.ID != tagged.String() {
			t.Errorf("Resolve(%q) = %s, expected %s", rev, v.ID, tagged)
		}
		if !v.Time.Equal(base.Add(time.Hour)) {
			t.Errorf("Resolve(%q) time = %v, expected the commit time", rev, v.Time)
		}
	}

	if _, err := store.Resolve(ctx, "no-such-ref"); !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("Resolve(unknown) error = %v, expected ErrUnknownVersion", err)
	}
}
