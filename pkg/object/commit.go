package object

import (
	"bytes"
	"fmt"
	"time"
)

// DepthUnlimited lets ancestry expansion follow parent links all the way to
// the root commit.
const DepthUnlimited = -1

// Commit is a snapshot: an owned root tree plus message, authorship, date,
// the tags attached to it, and a non-owning reference to its parent. The
// parent is fixed at construction and may be nil (a root commit).
type Commit struct {
	state
	message string
	author  *Signature
	date    time.Time
	tree    *Tree
	parent  *Commit
	tags    []*Tag
}

// NewCommit creates a commit with an empty root tree. The date defaults to
// the current UTC time, truncated to whole seconds.
func NewCommit(message string, parent *Commit) *Commit {
	return &Commit{
		state:   newState(),
		message: message,
		date:    normalizeDate(time.Now()),
		tree:    NewTree(),
		parent:  parent,
	}
}

// Kind returns KindCommit.
func (c *Commit) Kind() Kind {
	return KindCommit
}

// Message returns the commit message.
func (c *Commit) Message() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message
}

// SetMessage replaces the commit message.
func (c *Commit) SetMessage(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = message
	c.touch()
}

// Author returns the commit author, nil while unset.
func (c *Commit) Author() *Signature {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.author
}

// SetAuthor sets the author and committer identity. A commit cannot be
// serialized until an author is set.
func (c *Commit) SetAuthor(sig Signature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.author = &sig
	c.touch()
}

// Date returns the author/committer date.
func (c *Commit) Date() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.date
}

// SetDate sets the author/committer date, normalized to UTC whole seconds.
func (c *Commit) SetDate(date time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.date = normalizeDate(date)
	c.touch()
}

// Tree returns the commit's root tree.
func (c *Commit) Tree() *Tree {
	return c.tree
}

// Parent returns the parent commit, nil for a root commit.
func (c *Commit) Parent() *Commit {
	return c.parent
}

// Insert places a file at path inside the commit's root tree.
func (c *Commit) Insert(path string, configure func(*File)) (*File, error) {
	return c.tree.Insert(path, configure)
}

// Tag attaches a lightweight tag: a pure ref alias carrying no object of
// its own.
func (c *Commit) Tag(name string) *Tag {
	return c.attachTag(name, "")
}

// AnnotatedTag attaches an annotated tag. The tagger defaults to the
// commit's author as of this call; the date defaults to now.
func (c *Commit) AnnotatedTag(name, message string) *Tag {
	return c.attachTag(name, message)
}

func (c *Commit) attachTag(name, message string) *Tag {
	t := newTag(name, message, c)
	c.mu.Lock()
	defer c.mu.Unlock()
	t.tagger = c.author
	c.tags = append(c.tags, t)
	c.touch()
	return t
}

// Tags returns the tags attached to the commit, in attachment order.
func (c *Commit) Tags() []*Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Tag(nil), c.tags...)
}

// Content returns the canonical commit encoding. It fails if no author has
// been set.
func (c *Commit) Content() ([]byte, error) {
	content, _, err := c.cachedContent(KindCommit, c.deps, c.encode)
	return content, err
}

// Bytes returns the framed commit payload.
func (c *Commit) Bytes() ([]byte, error) {
	content, err := c.Content()
	if err != nil {
		return nil, err
	}
	return frame(KindCommit, content), nil
}

// Hash returns the SHA-1 of the framed commit payload.
func (c *Commit) Hash() (Hash, error) {
	_, sum, err := c.cachedContent(KindCommit, c.deps, c.encode)
	return sum, err
}

// encode runs under the write lock.
func (c *Commit) encode() ([]byte, error) {
	if c.author == nil {
		return nil, fmt.Errorf("serialize commit: author is required")
	}
	treeSum, err := c.tree.Hash()
	if err != nil {
		return nil, fmt.Errorf("serialize commit: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", treeSum)
	if c.parent != nil {
		parentSum, err := c.parent.Hash()
		if err != nil {
			return nil, fmt.Errorf("serialize commit: parent: %w", err)
		}
		fmt.Fprintf(&buf, "parent %s\n", parentSum)
	}
	fmt.Fprintf(&buf, "author %s\n", c.author.render(c.date))
	fmt.Fprintf(&buf, "committer %s\n", c.author.render(c.date))
	buf.WriteByte('\n')
	buf.WriteString(c.message)
	return buf.Bytes(), nil
}

// deps runs under the lock; the encoding embeds the root tree hash and the
// parent hash, so both feed freshness. Tags are serialized separately and
// do not.
func (c *Commit) deps() time.Time {
	latest := c.modifiedAt
	if m := c.tree.lastModified(); m.After(latest) {
		latest = m
	}
	if c.parent != nil {
		if m := c.parent.lastModified(); m.After(latest) {
			latest = m
		}
	}
	return latest
}

func (c *Commit) lastModified() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deps()
}

// All expands the graph reachable from the commit, in order: the commit
// itself when includeSelf is set, its annotated tags when includeTags is
// set, its root tree (when non-empty) followed by every nested object, then
// the parent's own expansion. Each hop to a parent consumes one unit of
// depth; tree descent does not. depth 0 and an excluded commit hash both
// short-circuit to nothing; DepthUnlimited follows parents to the root.
//
// Parent links are non-owning: expansion stops silently where the chain
// ends.
func (c *Commit) All(includeSelf bool, exclude HashSet, depth int, includeTags bool) ([]Object, error) {
	if depth == 0 {
		return nil, nil
	}
	sum, err := c.Hash()
	if err != nil {
		return nil, err
	}
	if exclude.Has(sum) {
		return nil, nil
	}

	c.mu.RLock()
	tags := append([]*Tag(nil), c.tags...)
	parent := c.parent
	c.mu.RUnlock()

	var out []Object
	if includeSelf {
		out = append(out, c)
	}
	if includeTags {
		for _, tag := range tags {
			if tag.Annotated() {
				out = append(out, tag)
			}
		}
	}
	if !c.tree.Empty() {
		out = append(out, c.tree)
		nested, err := c.tree.Children(false, true, exclude)
		if err != nil {
			return nil, err
		}
		for _, e := range nested {
			out = append(out, e)
		}
	}
	if parent != nil {
		next := depth
		if next > 0 {
			next--
		}
		rest, err := parent.All(true, exclude, next, includeTags)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}
	return out, nil
}
