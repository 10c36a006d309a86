// Package oracle defines the refactoring oracle the tracker consults at every
// commit transition, and a replay implementation serving recorded responses.
package oracle

import (
	"context"
	"errors"

	"github.com/masmgr/codetracker-go/internal/model"
)

// ErrTimeout is returned when the oracle gives up on a transition. Callers
// treat it as recoverable: only the branch being walked is abandoned.
var ErrTimeout = errors.New("oracle timeout")

// Oracle performs AST-level diffing and refactoring detection.
type Oracle interface {
	// Diff compares one container between the parent and child versions.
	Diff(ctx context.Context, req DiffRequest) (ContainerDiff, error)

	// Refactorings returns the cross-container operations detected for the
	// transition parent -> child.
	Refactorings(ctx context.Context, parent, child model.Version) ([]Refactoring, error)
}

// IsTimeout reports whether err means the oracle ran out of time, either by
// its own verdict or through the caller's deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
