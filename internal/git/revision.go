package git

import (
	"fmt"
	"strings"
)

// Range is a revision range read as git does: the walk starts at Head and
// analyses every first-parent commit after Base.
type Range struct {
	Base string
	Head string
}

func (r Range) String() string {
	return r.Base + ".." + r.Head
}

// ParseRange parses "base..head". The three-dot form is accepted and means
// the same on a first-parent walk. An empty head means HEAD.
func ParseRange(s string) (Range, error) {
	sep := ".."
	if strings.Contains(s, "...") {
		sep = "..."
	}
	base, head, ok := strings.Cut(strings.TrimSpace(s), sep)
	if !ok {
		return Range{}, fmt.Errorf("invalid revision range %q: expected base..head", s)
	}

	r := Range{Base: strings.TrimSpace(base), Head: strings.TrimSpace(head)}
	if r.Base == "" {
		return Range{}, fmt.Errorf("invalid revision range %q: missing base", s)
	}
	if r.Head == "" {
		r.Head = "HEAD"
	}
	return r, nil
}
