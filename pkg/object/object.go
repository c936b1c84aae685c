// Package object implements an in-memory git object graph: blobs, trees,
// commits, and annotated tags, each with a canonical serialized form and a
// content-derived SHA-1. Objects are built programmatically, never read from
// an existing store, and hand their framed bytes to external packaging.
package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Hash is the 20-byte SHA-1 digest of an object's framed bytes.
type Hash [20]byte

// String returns the 40-character lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// ParseHash decodes a 40-character hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parse hash %q: %w", s, err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("parse hash %q: want %d bytes, got %d", s, len(h), len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

// HashSet is a set of object hashes, used to exclude already-known objects
// from graph expansion. A nil HashSet excludes nothing.
type HashSet map[Hash]struct{}

// NewHashSet builds a set from the given hashes.
func NewHashSet(hashes ...Hash) HashSet {
	s := make(HashSet, len(hashes))
	for _, h := range hashes {
		s[h] = struct{}{}
	}
	return s
}

// Has reports whether h is in the set.
func (s HashSet) Has(h Hash) bool {
	_, ok := s[h]
	return ok
}

// Add inserts h into the set.
func (s HashSet) Add(h Hash) {
	s[h] = struct{}{}
}

// Kind identifies the kind of object.
type Kind int

const (
	KindCommit Kind = iota
	KindTree
	KindBlob
	KindTag
)

// kindPrefixes maps each kind to the stable string prefix used in the
// framed byte format and the hash input.
var kindPrefixes = map[Kind]string{
	KindCommit: "commit",
	KindTree:   "tree",
	KindBlob:   "blob",
	KindTag:    "tag",
}

// Prefix returns the serialization prefix for the kind.
func (k Kind) Prefix() string {
	return kindPrefixes[k]
}

func (k Kind) String() string {
	return kindPrefixes[k]
}

// Object is anything with a canonical serialized byte form and a derived
// content hash: a *Commit, *Tree, *File, or *Tag.
type Object interface {
	Kind() Kind

	// Content returns the kind-specific canonical encoding.
	Content() ([]byte, error)

	// Bytes returns the framed form "<prefix> <len>\0<content>". It is the
	// exact hash input and the exact payload an external packer compresses.
	Bytes() ([]byte, error)

	// Hash returns the SHA-1 digest of Bytes.
	Hash() (Hash, error)

	// lastModified reports the most recent mutation of this object or of any
	// object its encoding embeds. It also keeps the kind set closed.
	lastModified() time.Time
}

// frame prepends the object header to content.
func frame(k Kind, content []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", k.Prefix(), len(content))
	out := make([]byte, 0, len(header)+len(content))
	out = append(out, header...)
	return append(out, content...)
}

// hashFrame computes the SHA-1 of the framed content.
func hashFrame(k Kind, content []byte) Hash {
	h := sha1.New()
	fmt.Fprintf(h, "%s %d\x00", k.Prefix(), len(content))
	h.Write(content)
	var sum Hash
	copy(sum[:], h.Sum(nil))
	return sum
}

// state carries the lock and content cache every object embeds. The two
// markers decide freshness: cached content is served only while it was
// generated after the last mutation of the object and of everything its
// encoding embeds.
type state struct {
	mu          sync.RWMutex
	content     []byte
	sum         Hash
	generatedAt time.Time
	modifiedAt  time.Time
}

func newState() state {
	return state{modifiedAt: time.Now()}
}

// touch marks the object dirty. Callers hold the write lock.
func (s *state) touch() {
	s.modifiedAt = time.Now()
}

// fresh reports whether the cache may be served, given the most recent
// mutation among embedded objects. Callers hold at least the read lock.
func (s *state) fresh(deps time.Time) bool {
	if s.generatedAt.IsZero() {
		return false
	}
	if !s.modifiedAt.Before(s.generatedAt) {
		return false
	}
	return deps.Before(s.generatedAt)
}

// cachedContent serves the shared read path: a shared-lock fast path over a
// fresh cache, then an exclusive recompute when stale. deps and encode read
// the embedding type's own fields, so both run under this object's lock;
// they may call other objects' locking methods, never this object's.
// Nothing is cached when encode fails.
func (s *state) cachedContent(k Kind, deps func() time.Time, encode func() ([]byte, error)) ([]byte, Hash, error) {
	s.mu.RLock()
	if s.fresh(deps()) {
		content := append([]byte(nil), s.content...)
		sum := s.sum
		s.mu.RUnlock()
		return content, sum, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh(deps()) {
		content, err := encode()
		if err != nil {
			return nil, Hash{}, err
		}
		s.content = content
		s.sum = hashFrame(k, content)
		s.generatedAt = time.Now()
	}
	return append([]byte(nil), s.content...), s.sum, nil
}
