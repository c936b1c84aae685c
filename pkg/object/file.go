package object

import (
	"time"
)

// DefaultPermissions is the permission suffix a new file starts with.
const DefaultPermissions = "644"

// ContentFunc produces a file's bytes on demand. It is invoked fresh on
// every content read and its result is never retained, so expensive or
// externally-sourced content does not sit in memory between reads.
type ContentFunc func() []byte

// File is a blob: a named leaf holding content, a permission suffix, and an
// optional symlink flag. Files are created by tree path insertion and owned
// by their parent tree.
//
// Files opt out of content caching entirely: Content, Bytes, and Hash
// recompute on every call, whether the content is a static buffer or a
// producer.
type File struct {
	state
	name     string
	static   []byte
	producer ContentFunc
	perms    string
	symlink  bool
}

func newFile(name string) *File {
	return &File{
		state: newState(),
		name:  name,
		perms: DefaultPermissions,
	}
}

// Kind returns KindBlob.
func (f *File) Kind() Kind {
	return KindBlob
}

// Name returns the file name within its parent tree.
func (f *File) Name() string {
	return f.name
}

// SetContent replaces the file's content with a static copy of data,
// dropping any producer.
func (f *File) SetContent(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.static = append([]byte(nil), data...)
	f.producer = nil
	f.touch()
}

// SetProducer replaces the file's content source with fn, dropping any
// static content. fn is called on every read thereafter.
func (f *File) SetProducer(fn ContentFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.producer = fn
	f.static = nil
	f.touch()
}

// SetPermissions sets the permission suffix, e.g. "644" or "755".
func (f *File) SetPermissions(perms string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.perms = perms
	f.touch()
}

// SetSymlink marks or unmarks the file as a symbolic link.
func (f *File) SetSymlink(symlink bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.symlink = symlink
	f.touch()
}

// Permissions returns the permission suffix.
func (f *File) Permissions() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.perms
}

// Symlink reports whether the file is a symbolic link.
func (f *File) Symlink() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.symlink
}

// Content returns the file's bytes: a copy of the static buffer, or the
// producer's output.
func (f *File) Content() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.contentLocked(), nil
}

func (f *File) contentLocked() []byte {
	if f.producer != nil {
		return f.producer()
	}
	return append([]byte(nil), f.static...)
}

// Bytes returns the framed blob payload.
func (f *File) Bytes() ([]byte, error) {
	content, err := f.Content()
	if err != nil {
		return nil, err
	}
	return frame(KindBlob, content), nil
}

// Hash returns the SHA-1 of the framed blob payload.
func (f *File) Hash() (Hash, error) {
	content, err := f.Content()
	if err != nil {
		return Hash{}, err
	}
	return hashFrame(KindBlob, content), nil
}

// mode returns the tree-entry mode string for the file.
func (f *File) mode() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.symlink {
		return ModeSymlink
	}
	return modeFilePrefix + f.perms
}

func (f *File) lastModified() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.producer != nil {
		// Producer output can change without a setter running, so anything
		// embedding this file's hash must never trust a cache of it.
		return time.Now()
	}
	return f.modifiedAt
}
