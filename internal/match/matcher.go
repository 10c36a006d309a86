// Package match decides whether a candidate code element is the same logical
// entity as a tracked element, independent of the version it belongs to.
package match

import (
	"sync"

	"github.com/masmgr/codetracker-go/internal/model"
)

// Matcher is the identity predicate for one tracked element.
type Matcher interface {
	// Matches reports whether candidate is the tracked element at some version.
	Matches(candidate model.CodeElement) bool
	// Target returns the tracked element.
	Target() model.CodeElement
}

// ElementMatcher memoises identity decisions per candidate key, so a decision
// once made is never revisited. It is safe for concurrent use.
type ElementMatcher struct {
	target   model.CodeElement
	identity identityFunc

	mu        sync.Mutex
	decisions map[string]bool
}

// For returns the matcher for target's kind.
func For(target model.CodeElement) *ElementMatcher {
	return &ElementMatcher{
		target:    target,
		identity:  identities[target.Kind],
		decisions: make(map[string]bool),
	}
}

// Target implements Matcher.
func (m *ElementMatcher) Target() model.CodeElement {
	return m.target
}

// Matches implements Matcher.
func (m *ElementMatcher) Matches(candidate model.CodeElement) bool {
	if candidate.Absent || candidate.Kind != m.target.Kind || m.identity == nil {
		return false
	}

	key := candidate.Key()
	m.mu.Lock()
	defer m.mu.Unlock()

	if decided, ok := m.decisions[key]; ok {
		return decided
	}
	decided := m.identity(m.target, candidate)
	m.decisions[key] = decided
	return decided
}

// First returns the index of the first candidate m matches, or -1.
func First(m Matcher, candidates []model.CodeElement) int {
	for i, c := range candidates {
		if m.Matches(c) {
			return i
		}
	}
	return -1
}

var _ Matcher = (*ElementMatcher)(nil)
