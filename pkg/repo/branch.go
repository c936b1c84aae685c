// Package repo aggregates commits into branches and branches into a
// repository, and answers ref and hash queries across the whole graph.
package repo

import (
	"sync"

	"github.com/repofab/repofab/pkg/object"
)

// Branch is a named, append-only, chronological sequence of commits.
type Branch struct {
	mu      sync.RWMutex
	name    string
	commits []*object.Commit
}

func newBranch(name string) *Branch {
	return &Branch{name: name}
}

// Name returns the branch name.
func (b *Branch) Name() string {
	return b.name
}

// Commit appends a new commit to the branch. The commit's parent is the
// branch head at the time of this call and stays fixed afterwards; the
// first commit of a branch has no parent.
func (b *Branch) Commit(message string) *object.Commit {
	b.mu.Lock()
	defer b.mu.Unlock()
	var parent *object.Commit
	if n := len(b.commits); n > 0 {
		parent = b.commits[n-1]
	}
	c := object.NewCommit(message, parent)
	b.commits = append(b.commits, c)
	return c
}

// Commits returns the branch's commits in append order.
func (b *Branch) Commits() []*object.Commit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*object.Commit(nil), b.commits...)
}

// First returns the oldest commit, nil for an empty branch.
func (b *Branch) First() *object.Commit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.commits) == 0 {
		return nil
	}
	return b.commits[0]
}

// Last returns the newest commit, nil for an empty branch.
func (b *Branch) Last() *object.Commit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.commits) == 0 {
		return nil
	}
	return b.commits[len(b.commits)-1]
}

// Head returns the branch head: the newest commit.
func (b *Branch) Head() *object.Commit {
	return b.Last()
}
