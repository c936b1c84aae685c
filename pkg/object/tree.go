package object

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Tree mode constants compatible with git's canonical mode strings. Regular
// files render as "100" + the file's permission suffix.
const (
	ModeDir     = "40000"
	ModeSymlink = "120000"

	modeFilePrefix = "100"
)

// Entry is an object that can live inside a tree: a *File or a *Tree.
type Entry interface {
	Object
	Name() string
}

// Tree is an ordered collection of named children, unique by name and kept
// sorted by name ascending. A tree nested inside another tree is a folder;
// a commit's root tree has no name.
//
// A folder with no file anywhere beneath it is structurally invisible: it
// never appears in a parent's encoding or child enumeration.
type Tree struct {
	state
	name     string
	children []Entry
}

// NewTree creates an empty, unnamed tree.
func NewTree() *Tree {
	return &Tree{state: newState()}
}

func newFolder(name string) *Tree {
	return &Tree{state: newState(), name: name}
}

// Kind returns KindTree.
func (t *Tree) Kind() Kind {
	return KindTree
}

// Name returns the folder name, empty for a root tree.
func (t *Tree) Name() string {
	return t.name
}

// Insert places a file at a slash-separated relative path, creating
// intermediate folders on demand and reusing folders that already exist.
// Inserting at an existing file's path reconfigures that file in place.
// configure may be nil; when given, it runs against the file after
// placement.
//
// A path segment already claimed by a child of the other kind (a file where
// a folder is needed, or a folder at the final segment) is an error rather
// than a silent replacement.
func (t *Tree) Insert(path string, configure func(*File)) (*File, error) {
	clean := strings.Trim(path, "/")
	if clean == "" {
		return nil, fmt.Errorf("insert %q: empty path", path)
	}
	segments := strings.Split(clean, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("insert %q: empty path segment", path)
		}
	}
	return t.insert(path, segments, configure)
}

func (t *Tree) insert(path string, segments []string, configure func(*File)) (*File, error) {
	name := segments[0]

	if len(segments) == 1 {
		t.mu.Lock()
		child := t.child(name)
		file, isFile := child.(*File)
		if child != nil && !isFile {
			t.mu.Unlock()
			return nil, fmt.Errorf("insert %q: %q is a folder", path, name)
		}
		if file == nil {
			file = newFile(name)
			t.children = append(t.children, file)
			t.sortChildren()
			t.touch()
		}
		t.mu.Unlock()
		if configure != nil {
			configure(file)
		}
		return file, nil
	}

	t.mu.Lock()
	child := t.child(name)
	folder, isFolder := child.(*Tree)
	if child != nil && !isFolder {
		t.mu.Unlock()
		return nil, fmt.Errorf("insert %q: %q is a file", path, name)
	}
	if folder == nil {
		folder = newFolder(name)
		t.children = append(t.children, folder)
		t.sortChildren()
		t.touch()
	}
	t.mu.Unlock()
	return folder.insert(path, segments[1:], configure)
}

// child returns the child with the given name, nil if absent. Callers hold
// the lock.
func (t *Tree) child(name string) Entry {
	for _, c := range t.children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// sortChildren re-sorts by name ascending, byte-wise. Callers hold the
// write lock.
func (t *Tree) sortChildren() {
	sort.Slice(t.children, func(i, j int) bool {
		return t.children[i].Name() < t.children[j].Name()
	})
}

// Empty reports whether the tree has no file anywhere beneath it.
func (t *Tree) Empty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, child := range t.children {
		switch c := child.(type) {
		case *File:
			return false
		case *Tree:
			if !c.Empty() {
				return false
			}
		}
	}
	return true
}

// Children returns the tree's visible children in name order, skipping
// empty folders and entries whose hash is in exclude. includeChildren
// flattens folder contents into the result; distinct collapses entries
// with equal hashes, keeping the first occurrence.
func (t *Tree) Children(distinct, includeChildren bool, exclude HashSet) ([]Entry, error) {
	t.mu.RLock()
	kids := append([]Entry(nil), t.children...)
	t.mu.RUnlock()

	var out []Entry
	for _, child := range kids {
		if folder, ok := child.(*Tree); ok && folder.Empty() {
			continue
		}
		sum, err := child.Hash()
		if err != nil {
			return nil, err
		}
		if exclude.Has(sum) {
			continue
		}
		out = append(out, child)
		if folder, ok := child.(*Tree); ok && includeChildren {
			nested, err := folder.Children(false, true, exclude)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
	}
	if distinct {
		return dedupeEntries(out)
	}
	return out, nil
}

func dedupeEntries(entries []Entry) ([]Entry, error) {
	seen := make(HashSet, len(entries))
	out := entries[:0]
	for _, e := range entries {
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
	return out, nil
}

// Content returns the canonical tree encoding: for every visible child in
// name order, "<mode> <name>\0" followed by the raw 20-byte child hash.
func (t *Tree) Content() ([]byte, error) {
	content, _, err := t.cachedContent(KindTree, t.childDeps, t.encode)
	return content, err
}

// Bytes returns the framed tree payload.
func (t *Tree) Bytes() ([]byte, error) {
	content, err := t.Content()
	if err != nil {
		return nil, err
	}
	return frame(KindTree, content), nil
}

// Hash returns the SHA-1 of the framed tree payload.
func (t *Tree) Hash() (Hash, error) {
	_, sum, err := t.cachedContent(KindTree, t.childDeps, t.encode)
	return sum, err
}

// encode runs under the write lock; it reads t.children directly and the
// children through their own locking methods.
func (t *Tree) encode() ([]byte, error) {
	var buf bytes.Buffer
	for _, child := range t.children {
		var mode string
		switch c := child.(type) {
		case *Tree:
			if c.Empty() {
				continue
			}
			mode = ModeDir
		case *File:
			mode = c.mode()
		default:
			return nil, fmt.Errorf("serialize tree: unexpected child %T", child)
		}
		sum, err := child.Hash()
		if err != nil {
			return nil, fmt.Errorf("serialize tree: child %q: %w", child.Name(), err)
		}
		fmt.Fprintf(&buf, "%s %s\x00", mode, child.Name())
		buf.Write(sum[:])
	}
	return buf.Bytes(), nil
}

// childDeps runs under the lock and reports the latest mutation among the
// tree and its descendants.
func (t *Tree) childDeps() time.Time {
	latest := t.modifiedAt
	for _, child := range t.children {
		if m := child.lastModified(); m.After(latest) {
			latest = m
		}
	}
	return latest
}

func (t *Tree) lastModified() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.childDeps()
}
