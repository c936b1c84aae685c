package repo

import (
	"fmt"
	"testing"

	"github.com/repofab/repofab/pkg/object"
)

var testAuthor = object.Signature{Name: "Ada Lovelace", Email: "ada@example.com"}

// commitWithFile appends a configured commit to a branch.
func commitWithFile(t *testing.T, b *Branch, message, path, content string) *object.Commit {
	t.Helper()
	c := b.Commit(message)
	c.SetAuthor(testAuthor)
	if _, err := c.Insert(path, func(f *object.File) { f.SetContent([]byte(content)) }); err != nil {
		t.Fatalf("Insert %q: %v", path, err)
	}
	return c
}

func TestBranchCommitParentage(t *testing.T) {
	b := newBranch("main")

	first := commitWithFile(t, b, "c1", "a.txt", "1")
	if first.Parent() != nil {
		t.Error("first commit has a parent")
	}

	var prev *object.Commit = first
	for i := 2; i <= 4; i++ {
		c := commitWithFile(t, b, fmt.Sprintf("c%d", i), "a.txt", fmt.Sprint(i))
		if c.Parent() != prev {
			t.Errorf("commit %d: parent is not the previous head", i)
		}
		prev = c
	}
}

func TestBranchParentFixedAtCreation(t *testing.T) {
	b := newBranch("main")
	c1 := commitWithFile(t, b, "c1", "a.txt", "1")
	c2 := commitWithFile(t, b, "c2", "a.txt", "2")

	// A later commit must not rewrite c2's parent.
	commitWithFile(t, b, "c3", "a.txt", "3")
	if c2.Parent() != c1 {
		t.Error("parent changed after later insertions")
	}
}

func TestBranchHeadFirstLast(t *testing.T) {
	b := newBranch("main")
	if b.Head() != nil || b.First() != nil || b.Last() != nil {
		t.Error("empty branch should have nil head/first/last")
	}

	c1 := commitWithFile(t, b, "c1", "a.txt", "1")
	c2 := commitWithFile(t, b, "c2", "a.txt", "2")

	if b.First() != c1 {
		t.Error("First is not the oldest commit")
	}
	if b.Last() != c2 {
		t.Error("Last is not the newest commit")
	}
	if b.Head() != c2 {
		t.Error("Head is not the newest commit")
	}

	commits := b.Commits()
	if len(commits) != 2 || commits[0] != c1 || commits[1] != c2 {
		t.Error("Commits not in append order")
	}
}
