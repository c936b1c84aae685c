package object

import (
	"bytes"
	"fmt"
	"time"
)

// Tag is a named pointer at a commit. A lightweight tag carries only its
// name and is never objectified: it exists purely as a ref alias for the
// tagged commit. An annotated tag carries a message, tagger, and date, and
// serializes to an object of its own.
//
// The reference to the tagged commit is non-owning.
type Tag struct {
	state
	name    string
	message string
	commit  *Commit
	tagger  *Signature
	date    time.Time
}

func newTag(name, message string, commit *Commit) *Tag {
	return &Tag{
		state:   newState(),
		name:    name,
		message: message,
		commit:  commit,
		date:    normalizeDate(time.Now()),
	}
}

// Kind returns KindTag.
func (t *Tag) Kind() Kind {
	return KindTag
}

// Name returns the tag name.
func (t *Tag) Name() string {
	return t.name
}

// Commit returns the tagged commit, nil if the referent is gone.
func (t *Tag) Commit() *Commit {
	return t.commit
}

// Annotated reports whether the tag carries a message and therefore
// serializes to an object of its own.
func (t *Tag) Annotated() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.message != ""
}

// Message returns the annotation message, empty for a lightweight tag.
func (t *Tag) Message() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.message
}

// SetMessage replaces the annotation message. A non-empty message promotes
// a lightweight tag to an annotated one.
func (t *Tag) SetMessage(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = message
	t.touch()
}

// Tagger returns the tagger identity, nil while unset.
func (t *Tag) Tagger() *Signature {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tagger
}

// SetTagger sets the tagger identity.
func (t *Tag) SetTagger(sig Signature) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tagger = &sig
	t.touch()
}

// Date returns the tag date.
func (t *Tag) Date() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.date
}

// SetDate sets the tag date, normalized to UTC whole seconds.
func (t *Tag) SetDate(date time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.date = normalizeDate(date)
	t.touch()
}

// Content returns the canonical annotated-tag encoding. It fails for a
// lightweight tag and for an annotated tag with no tagger.
func (t *Tag) Content() ([]byte, error) {
	content, _, err := t.cachedContent(KindTag, t.deps, t.encode)
	return content, err
}

// Bytes returns the framed tag payload.
func (t *Tag) Bytes() ([]byte, error) {
	content, err := t.Content()
	if err != nil {
		return nil, err
	}
	return frame(KindTag, content), nil
}

// Hash returns the SHA-1 of the framed tag payload.
func (t *Tag) Hash() (Hash, error) {
	_, sum, err := t.cachedContent(KindTag, t.deps, t.encode)
	return sum, err
}

// encode runs under the write lock.
func (t *Tag) encode() ([]byte, error) {
	if t.message == "" {
		return nil, fmt.Errorf("serialize tag %q: not annotated", t.name)
	}
	if t.tagger == nil {
		return nil, fmt.Errorf("serialize tag %q: tagger is required", t.name)
	}
	if t.commit == nil {
		return nil, fmt.Errorf("serialize tag %q: tagged commit no longer exists", t.name)
	}
	sum, err := t.commit.Hash()
	if err != nil {
		return nil, fmt.Errorf("serialize tag %q: %w", t.name, err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", sum)
	buf.WriteString("type commit\n")
	fmt.Fprintf(&buf, "tag %s\n", t.name)
	fmt.Fprintf(&buf, "tagger %s\n", t.tagger.render(t.date))
	buf.WriteByte('\n')
	buf.WriteString(t.message)
	return buf.Bytes(), nil
}

// deps runs under the lock; the encoding embeds the tagged commit's hash.
func (t *Tag) deps() time.Time {
	latest := t.modifiedAt
	if t.commit != nil {
		if m := t.commit.lastModified(); m.After(latest) {
			latest = m
		}
	}
	return latest
}

func (t *Tag) lastModified() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.deps()
}
