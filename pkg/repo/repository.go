package repo

import (
	"fmt"
	"sync"

	"github.com/repofab/repofab/pkg/object"
)

// Repository is the top-level aggregate: an append-only, ordered list of
// branches.
type Repository struct {
	mu       sync.RWMutex
	branches []*Branch
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{}
}

// NewBranch appends a branch and returns it. Branch names are not checked
// for uniqueness: Refs gives a later duplicate the refs/heads entry, while
// Branch keeps returning the earlier one.
func (r *Repository) NewBranch(name string) *Branch {
	b := newBranch(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches = append(r.branches, b)
	return b
}

// Branches returns the branches in creation order.
func (r *Repository) Branches() []*Branch {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Branch(nil), r.branches...)
}

// Branch returns the first branch with the given name, nil if absent.
func (r *Repository) Branch(name string) *Branch {
	for _, b := range r.Branches() {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

// Refs derives the ref map: "refs/heads/<branch>" points at each branch's
// last commit, "refs/tags/<tag>" at the tag object for annotated tags and
// at the tagged commit otherwise. Values are 40-character lowercase hex.
// Duplicate names resolve last-write-wins in branch and commit order.
func (r *Repository) Refs() (map[string]string, error) {
	refs := make(map[string]string)
	for _, b := range r.Branches() {
		head := b.Head()
		if head == nil {
			continue
		}
		sum, err := head.Hash()
		if err != nil {
			return nil, fmt.Errorf("refs: branch %q: %w", b.Name(), err)
		}
		refs["refs/heads/"+b.Name()] = sum.String()

		for _, c := range b.Commits() {
			for _, t := range c.Tags() {
				var target object.Hash
				if t.Annotated() {
					target, err = t.Hash()
				} else {
					target, err = c.Hash()
				}
				if err != nil {
					return nil, fmt.Errorf("refs: tag %q: %w", t.Name(), err)
				}
				refs["refs/tags/"+t.Name()] = target.String()
			}
		}
	}
	return refs, nil
}

// CommitWithTag returns the first commit carrying a tag with the given
// name, scanning branches and commits in stored order; nil if no commit
// carries it.
func (r *Repository) CommitWithTag(name string) *object.Commit {
	for _, b := range r.Branches() {
		for _, c := range b.Commits() {
			for _, t := range c.Tags() {
				if t.Name() == name {
					return c
				}
			}
		}
	}
	return nil
}

// ByHash resolves a hash to an object by scanning every branch's commits
// and, per commit, its annotated tags, root tree, and nested children. It
// returns the first match in scan order and nil when nothing matches;
// misses are not errors.
func (r *Repository) ByHash(h object.Hash) (object.Object, error) {
	for _, b := range r.Branches() {
		for _, c := range b.Commits() {
			found, err := matchCommit(c, h)
			if err != nil {
				return nil, err
			}
			if found != nil {
				return found, nil
			}
		}
	}
	return nil, nil
}

// ByHashes resolves each hash via ByHash, dropping misses.
func (r *Repository) ByHashes(hashes []object.Hash) ([]object.Object, error) {
	var out []object.Object
	for _, h := range hashes {
		obj, err := r.ByHash(h)
		if err != nil {
			return nil, err
		}
		if obj != nil {
			out = append(out, obj)
		}
	}
	return out, nil
}

func matchCommit(c *object.Commit, h object.Hash) (object.Object, error) {
	sum, err := c.Hash()
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	if sum == h {
		return c, nil
	}

	for _, t := range c.Tags() {
		if !t.Annotated() {
			continue
		}
		tagSum, err := t.Hash()
		if err != nil {
			return nil, fmt.Errorf("lookup: %w", err)
		}
		if tagSum == h {
			return t, nil
		}
	}

	tree := c.Tree()
	if tree.Empty() {
		return nil, nil
	}
	treeSum, err := tree.Hash()
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	if treeSum == h {
		return tree, nil
	}
	children, err := tree.Children(false, true, nil)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	for _, e := range children {
		entrySum, err := e.Hash()
		if err != nil {
			return nil, fmt.Errorf("lookup: %w", err)
		}
		if entrySum == h {
			return e, nil
		}
	}
	return nil, nil
}

// ByHashesWithChildren resolves each hash and expands it per kind: a tree
// to itself plus its full recursive children, a commit via All, a tag via
// its tagged commit's All, anything else to itself. depth bounds parent
// hops for commit expansion (object.DepthUnlimited for none); exclude
// prunes already-known objects so callers can compute incremental deltas.
// Results are deduplicated by hash in first-seen order.
func (r *Repository) ByHashesWithChildren(hashes []object.Hash, exclude object.HashSet, depth int) ([]object.Object, error) {
	var out []object.Object
	seen := make(object.HashSet)
	for _, h := range hashes {
		obj, err := r.ByHash(h)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			continue
		}

		var expanded []object.Object
		switch o := obj.(type) {
		case *object.Tree:
			expanded = append(expanded, o)
			children, err := o.Children(false, true, exclude)
			if err != nil {
				return nil, err
			}
			for _, e := range children {
				expanded = append(expanded, e)
			}
		case *object.Commit:
			expanded, err = o.All(true, exclude, depth, true)
			if err != nil {
				return nil, err
			}
		case *object.Tag:
			if c := o.Commit(); c != nil {
				expanded, err = c.All(true, exclude, depth, true)
				if err != nil {
					return nil, err
				}
			}
		default:
			expanded = append(expanded, obj)
		}

		for _, e := range expanded {
			sum, err := e.Hash()
			if err != nil {
				return nil, err
			}
			if seen.Has(sum) {
				continue
			}
			seen.Add(sum)
			out = append(out, e)
		}
	}
	return out, nil
}
