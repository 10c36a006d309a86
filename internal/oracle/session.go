package oracle

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/masmgr/codetracker-go/internal/git"
	"github.com/masmgr/codetracker-go/internal/model"
)

// Session is a recorded tracking session: optional commit ancestry, the
// element to start from, and the oracle responses for each transition.
type Session struct {
	Commits     []CommitSpec     `yaml:"commits"`
	Start       *StartSpec       `yaml:"start"`
	Transitions []TransitionSpec `yaml:"transitions"`
}

// CommitSpec records one commit of the ancestry.
type CommitSpec struct {
	ID      string   `yaml:"id"`
	Parent  string   `yaml:"parent"`
	Parents []string `yaml:"parents"`
	Time    string   `yaml:"time"`
}

// StartSpec names the version and element tracking starts from.
type StartSpec struct {
	Version string      `yaml:"version"`
	Element ElementSpec `yaml:"element"`
}

// ElementSpec describes a code element without a version.
type ElementSpec struct {
	Kind      string     `yaml:"kind"`
	Name      string     `yaml:"name"`
	Container string     `yaml:"container"`
	Signature string     `yaml:"signature"`
	Path      string     `yaml:"path"`
	Span      model.Span `yaml:"span"`
}

// PairSpec is a matched pair of a container diff.
type PairSpec struct {
	Before  ElementSpec `yaml:"before"`
	After   ElementSpec `yaml:"after"`
	Changes []string    `yaml:"changes"`
}

// DiffSpec is the recorded diff of one container.
type DiffSpec struct {
	Container string        `yaml:"container"`
	Matched   []PairSpec    `yaml:"matched"`
	Added     []ElementSpec `yaml:"added"`
	Removed   []ElementSpec `yaml:"removed"`
}

// RefactoringSpec is one recorded refactoring descriptor.
type RefactoringSpec struct {
	Kind        string        `yaml:"kind"`
	Before      []ElementSpec `yaml:"before"`
	After       []ElementSpec `yaml:"after"`
	Changes     []string      `yaml:"changes"`
	Description string        `yaml:"description"`
}

// TransitionSpec holds the responses for the transition into Child.
type TransitionSpec struct {
	Child        string            `yaml:"child"`
	Diffs        []DiffSpec        `yaml:"diffs"`
	Refactorings []RefactoringSpec `yaml:"refactorings"`
	Timeout      bool              `yaml:"timeout"`
	Error        string            `yaml:"error"`
}

// LoadSession reads a YAML session file.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSession(data)
}

// ParseSession decodes a YAML session document.
func ParseSession(data []byte) (*Session, error) {
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}
	return &s, nil
}

// Replay builds the replay oracle serving the session's transitions.
func (s *Session) Replay() (*Replay, error) {
	r := NewReplay()
	for _, t := range s.Transitions {
		if t.Child == "" {
			return nil, errors.New("transition without child version")
		}
		if t.Timeout {
			r.SetTimeout(t.Child)
		}
		if t.Error != "" {
			r.SetError(t.Child, errors.New(t.Error))
		}

		for _, d := range t.Diffs {
			diff, err := d.compile()
			if err != nil {
				return nil, fmt.Errorf("transition %s: %w", t.Child, err)
			}
			r.AddDiff(t.Child, d.Container, diff)
		}

		for _, rs := range t.Refactorings {
			ref, err := rs.compile()
			if err != nil {
				return nil, fmt.Errorf("transition %s: %w", t.Child, err)
			}
			r.AddRefactorings(t.Child, ref)
		}
	}
	return r, nil
}

// Store builds the ancestry recorded in the session. ok is false when the
// session carries no commits and ancestry must come from a repository.
func (s *Session) Store() (store *git.MemoryStore, ok bool, err error) {
	if len(s.Commits) == 0 {
		return nil, false, nil
	}
	commits := make([]git.Commit, 0, len(s.Commits))
	for _, c := range s.Commits {
		if c.ID == "" {
			return nil, false, errors.New("commit without id")
		}
		when, err := parseTime(c.Time)
		if err != nil {
			return nil, false, fmt.Errorf("commit %s: %w", c.ID, err)
		}
		parents := c.Parents
		if c.Parent != "" {
			parents = append([]string{c.Parent}, parents...)
		}
		commits = append(commits, git.Commit{
			Version: model.Version{ID: c.ID, Time: when},
			Parents: parents,
		})
	}
	return git.NewMemoryStore(commits), true, nil
}

// StartElement returns the element to track bound to v.
func (s *Session) StartElement(v model.Version) (model.CodeElement, error) {
	if s.Start == nil {
		return model.CodeElement{}, errors.New("session has no start element")
	}
	e, err := s.Start.Element.compile()
	if err != nil {
		return model.CodeElement{}, fmt.Errorf("start element: %w", err)
	}
	return e.At(v), nil
}

func (e ElementSpec) compile() (model.CodeElement, error) {
	kind, err := model.ParseElementKind(e.Kind)
	if err != nil {
		return model.CodeElement{}, err
	}
	return model.CodeElement{
		Kind:      kind,
		Name:      e.Name,
		Container: e.Container,
		Signature: e.Signature,
		Path:      e.Path,
		Span:      e.Span,
	}, nil
}

func compileAll(specs []ElementSpec) ([]model.CodeElement, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]model.CodeElement, len(specs))
	for i, s := range specs {
		e, err := s.compile()
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func compileChanges(names []string, description string) ([]model.Change, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]model.Change, len(names))
	for i, n := range names {
		k, err := model.ParseChangeKind(n)
		if err != nil {
			return nil, err
		}
		out[i] = model.Change{Kind: k, Description: description}
	}
	return out, nil
}

func (d DiffSpec) compile() (ContainerDiff, error) {
	var out ContainerDiff
	for _, p := range d.Matched {
		before, err := p.Before.compile()
		if err != nil {
			return ContainerDiff{}, err
		}
		after, err := p.After.compile()
		if err != nil {
			return ContainerDiff{}, err
		}
		changes, err := compileChanges(p.Changes, "")
		if err != nil {
			return ContainerDiff{}, err
		}
		out.Matched = append(out.Matched, MatchedPair{Before: before, After: after, Changes: changes})
	}

	var err error
	if out.Added, err = compileAll(d.Added); err != nil {
		return ContainerDiff{}, err
	}
	if out.Removed, err = compileAll(d.Removed); err != nil {
		return ContainerDiff{}, err
	}
	return out, nil
}

func (rs RefactoringSpec) compile() (Refactoring, error) {
	kind, err := ParseRefactoringKind(rs.Kind)
	if err != nil {
		return Refactoring{}, err
	}
	ref := Refactoring{Kind: kind, Description: rs.Description}
	if ref.Before, err = compileAll(rs.Before); err != nil {
		return Refactoring{}, err
	}
	if ref.After, err = compileAll(rs.After); err != nil {
		return Refactoring{}, err
	}
	if ref.Changes, err = compileChanges(rs.Changes, rs.Description); err != nil {
		return Refactoring{}, err
	}
	if err := ref.Validate(); err != nil {
		return Refactoring{}, err
	}
	return ref, nil
}

var sessionTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range sessionTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
