package git

import (
	"context"
	"errors"
	"time"

	"github.com/masmgr/codetracker-go/internal/model"
)

// ErrUnknownVersion is returned when a store has no record of a commit.
var ErrUnknownVersion = errors.New("unknown version")

// VersionStore answers commit ancestry questions for the tracker.
// This abstraction keeps the traversal independent of how history is read.
type VersionStore interface {
	// Parent returns the version preceding v. ok is false when v has no parent
	// the store can reach (root commit, shallow clone, filtered history); that
	// is an expected end of ancestry, not an error.
	Parent(ctx context.Context, v model.Version) (parent model.Version, ok bool, err error)

	// Time returns the commit timestamp of the version with the given id.
	Time(ctx context.Context, id string) (time.Time, error)
}

// Compile-time interface conformance checks.
var (
	_ VersionStore = (*Store)(nil)
	_ VersionStore = (*CLIStore)(nil)
	_ VersionStore = (*MemoryStore)(nil)
)
