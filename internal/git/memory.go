package git

import (
	"context"
	"fmt"
	"time"

	"github.com/masmgr/codetracker-go/internal/model"
)

// Commit is one ancestry record held by a MemoryStore.
type Commit struct {
	Version model.Version
	Parents []string
}

// MemoryStore serves ancestry from explicit commit records.
// It backs session files and lets tests run without a Git repository.
type MemoryStore struct {
	commits map[string]Commit
	order   []string
}

// NewMemoryStore creates a store holding the given commits.
func NewMemoryStore(commits []Commit) *MemoryStore {
	m := &MemoryStore{commits: make(map[string]Commit, len(commits))}
	for _, c := range commits {
		m.Add(c)
	}
	return m
}

// Chain builds a linear first-parent history from versions given oldest first.
func Chain(versions ...model.Version) *MemoryStore {
	commits := make([]Commit, len(versions))
	for i, v := range versions {
		commits[i] = Commit{Version: v}
		if i > 0 {
			commits[i].Parents = []string{versions[i-1].ID}
		}
	}
	return NewMemoryStore(commits)
}

// Add records a commit, replacing an existing record with the same id.
func (m *MemoryStore) Add(c Commit) {
	if _, exists := m.commits[c.Version.ID]; !exists {
		m.order = append(m.order, c.Version.ID)
	}
	m.commits[c.Version.ID] = c
}

// Version looks up a commit by id.
func (m *MemoryStore) Version(id string) (model.Version, bool) {
	c, ok := m.commits[id]
	return c.Version, ok
}

// Len returns the number of commits held.
func (m *MemoryStore) Len() int {
	return len(m.order)
}

// Parent returns the first parent of v. A parent id the store has no record
// of ends the ancestry, as a shallow clone would.
func (m *MemoryStore) Parent(ctx context.Context, v model.Version) (model.Version, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Version{}, false, err
	}
	c, ok := m.commits[v.ID]
	if !ok {
		return model.Version{}, false, fmt.Errorf("%w: %s", ErrUnknownVersion, v.ID)
	}
	if len(c.Parents) == 0 {
		return model.Version{}, false, nil
	}
	p, ok := m.commits[c.Parents[0]]
	if !ok {
		return model.Version{}, false, nil
	}
	return p.Version, true, nil
}

// Time returns the recorded timestamp of the commit with the given id.
func (m *MemoryStore) Time(ctx context.Context, id string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	c, ok := m.commits[id]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownVersion, id)
	}
	return c.Version.Time, nil
}
