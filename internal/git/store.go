package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/masmgr/codetracker-go/internal/model"
)

// StoreOptions configures the go-git backed version store.
type StoreOptions struct {
	RepoPath string
	Include  []string // Glob patterns; when set, ancestry skips commits touching no match
	Exclude  []string // Glob patterns ignored when deciding whether a commit touches a path
}

// Store reads commit ancestry from a Git repository through go-git.
// Ancestry follows first parents only.
type Store struct {
	repo *git.Repository
	opts StoreOptions
}

// Open opens the repository at opts.RepoPath.
func Open(opts StoreOptions) (*Store, error) {
	repo, err := git.PlainOpen(opts.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}
	return &Store{repo: repo, opts: opts}, nil
}

// Resolve turns a branch name, tag, revision expression or commit hash into a Version.
// An empty revision means HEAD.
func (s *Store) Resolve(ctx context.Context, rev string) (model.Version, error) {
	if err := ctx.Err(); err != nil {
		return model.Version{}, err
	}

	rev = strings.TrimSpace(rev)
	if rev == "" || strings.EqualFold(rev, "HEAD") {
		ref, err := s.repo.Head()
		if err != nil {
			return model.Version{}, fmt.Errorf("resolving HEAD: %w", err)
		}
		return s.versionOf(ref.Hash())
	}

	// Try as a branch first
	if ref, err := s.repo.Reference(plumbing.NewBranchReferenceName(rev), true); err == nil {
		return s.versionOf(ref.Hash())
	}

	// Tags, relative revisions (HEAD~2) and hashes
	hash, err := s.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return model.Version{}, fmt.Errorf("resolving ref %q: not a branch, tag, or commit hash: %w", rev, ErrUnknownVersion)
	}
	return s.versionOf(*hash)
}

// Parent returns the first parent of v. With Include/Exclude filters set it
// returns the nearest first-parent ancestor whose own change touches a matching path.
func (s *Store) Parent(ctx context.Context, v model.Version) (model.Version, bool, error) {
	c, err := s.repo.CommitObject(plumbing.NewHash(v.ID))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return model.Version{}, false, fmt.Errorf("%w: %s", ErrUnknownVersion, v.ID)
		}
		return model.Version{}, false, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return model.Version{}, false, err
		}

		// Root commit
		if c.NumParents() == 0 {
			return model.Version{}, false, nil
		}

		p, err := c.Parent(0)
		if err != nil {
			// Shallow clones stop here.
			if errors.Is(err, plumbing.ErrObjectNotFound) {
				return model.Version{}, false, nil
			}
			return model.Version{}, false, err
		}

		if !s.scoped() {
			return commitVersion(p), true, nil
		}

		touched, err := s.touches(p)
		if err != nil {
			return model.Version{}, false, err
		}
		if touched {
			return commitVersion(p), true, nil
		}
		c = p
	}
}

// Time returns the committer timestamp of the commit with the given id.
func (s *Store) Time(ctx context.Context, id string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	c, err := s.repo.CommitObject(plumbing.NewHash(id))
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownVersion, id)
		}
		return time.Time{}, err
	}
	return c.Committer.When, nil
}

func (s *Store) versionOf(hash plumbing.Hash) (model.Version, error) {
	c, err := s.repo.CommitObject(hash)
	if err != nil {
		return model.Version{}, fmt.Errorf("getting commit: %w", err)
	}
	return commitVersion(c), nil
}

func commitVersion(c *object.Commit) model.Version {
	return model.Version{ID: c.Hash.String(), Time: c.Committer.When}
}

func (s *Store) scoped() bool {
	return len(s.opts.Include) > 0 || len(s.opts.Exclude) > 0
}

// touches reports whether the commit changed any path passing the filters.
func (s *Store) touches(c *object.Commit) (bool, error) {
	tree, err := c.Tree()
	if err != nil {
		return false, fmt.Errorf("getting tree: %w", err)
	}

	if c.NumParents() == 0 {
		found := false
		err := tree.Files().ForEach(func(f *object.File) error {
			if s.matchesFilters(f.Name) {
				found = true
				return storer.ErrStop
			}
			return nil
		})
		if err != nil {
			return false, err
		}
		return found, nil
	}

	parent, err := c.Parent(0)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return true, nil
		}
		return false, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return false, fmt.Errorf("getting parent tree: %w", err)
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return false, fmt.Errorf("diffing trees: %w", err)
	}
	for _, change := range changes {
		if change.From.Name != "" && s.matchesFilters(change.From.Name) {
			return true, nil
		}
		if change.To.Name != "" && s.matchesFilters(change.To.Name) {
			return true, nil
		}
	}
	return false, nil
}

// matchesFilters checks if a path matches the include/exclude filters.
func (s *Store) matchesFilters(path string) bool {
	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	// Check exclude patterns first
	for _, pattern := range s.opts.Exclude {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return false
		}
	}

	// If no include patterns, accept all
	if len(s.opts.Include) == 0 {
		return true
	}

	for _, pattern := range s.opts.Include {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}

	return false
}
