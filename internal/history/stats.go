package history

import (
	"sort"
	"time"

	"github.com/masmgr/codetracker-go/internal/model"
)

// Stats summarises a history.
type Stats struct {
	Entries int
	Commits int
	ByKind  map[model.ChangeKind]int
	// Meaningful counts entries carrying at least one non-cosmetic change.
	Meaningful  int
	FirstChange time.Time
	LastChange  time.Time
}

// Summarize counts the changes of entries.
func Summarize(entries []Entry) Stats {
	s := Stats{Entries: len(entries), ByKind: make(map[model.ChangeKind]int)}
	commits := make(map[string]struct{})
	for _, e := range entries {
		commits[e.CommitID()] = struct{}{}

		meaningful := false
		for _, k := range e.Kinds() {
			s.ByKind[k]++
			if !k.Cosmetic() {
				meaningful = true
			}
		}
		if meaningful {
			s.Meaningful++
		}

		d := e.Date()
		if d.IsZero() {
			continue
		}
		if s.FirstChange.IsZero() || d.Before(s.FirstChange) {
			s.FirstChange = d
		}
		if d.After(s.LastChange) {
			s.LastChange = d
		}
	}
	s.Commits = len(commits)
	return s
}

// Kinds returns the kinds present in the summary in ascending order.
func (s Stats) Kinds() []model.ChangeKind {
	kinds := make([]model.ChangeKind, 0, len(s.ByKind))
	for k := range s.ByKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
