// Package export writes a repository's objects out as a git-compatible
// loose-object store: each object's framed bytes zlib-compressed under
// objects/ab/38-hex-chars, plus a packed-refs style listing. The object
// model itself never compresses or touches disk; this package is the
// external packaging consumer of its byte format.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zlib"

	"github.com/repofab/repofab/pkg/object"
	"github.com/repofab/repofab/pkg/repo"
)

// Writer lays objects out under a root directory. Writes are atomic: data
// goes to a temp file first and is renamed into place.
type Writer struct {
	root string
}

// NewWriter creates a Writer rooted at dir. The objects/ fan-out is
// created lazily on first write.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// ObjectPath returns the on-disk path for a hash.
func (w *Writer) ObjectPath(h object.Hash) string {
	hex := h.String()
	return filepath.Join(w.root, "objects", hex[:2], hex[2:])
}

// WriteObject compresses an object's framed bytes and writes them into the
// fan-out, returning the object's hash. Existing objects are left alone:
// content addressing makes rewrites pointless.
func (w *Writer) WriteObject(obj object.Object) (object.Hash, error) {
	sum, err := obj.Hash()
	if err != nil {
		return object.Hash{}, fmt.Errorf("export object: %w", err)
	}
	dest := w.ObjectPath(sum)
	if _, err := os.Stat(dest); err == nil {
		return sum, nil
	}

	raw, err := obj.Bytes()
	if err != nil {
		return object.Hash{}, fmt.Errorf("export object: %w", err)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return object.Hash{}, fmt.Errorf("export object %s: compress: %w", sum, err)
	}
	if err := zw.Close(); err != nil {
		return object.Hash{}, fmt.Errorf("export object %s: compress: %w", sum, err)
	}

	if err := w.writeAtomic(dest, buf.Bytes()); err != nil {
		return object.Hash{}, fmt.Errorf("export object %s: %w", sum, err)
	}
	return sum, nil
}

// WriteRefs writes the ref map as a packed-refs style file named "refs":
// one "<hash> <ref>" line per entry, sorted by ref name.
func (w *Writer) WriteRefs(refs map[string]string) error {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		fmt.Fprintf(&buf, "%s %s\n", refs[name], name)
	}
	if err := w.writeAtomic(filepath.Join(w.root, "refs"), buf.Bytes()); err != nil {
		return fmt.Errorf("export refs: %w", err)
	}
	return nil
}

// WriteRepository exports every object reachable from the repository's
// refs, then the ref listing itself.
func (w *Writer) WriteRepository(r *repo.Repository) error {
	refs, err := r.Refs()
	if err != nil {
		return fmt.Errorf("export repository: %w", err)
	}

	hashes := make([]object.Hash, 0, len(refs))
	seen := make(object.HashSet, len(refs))
	for name := range refs {
		h, err := object.ParseHash(refs[name])
		if err != nil {
			return fmt.Errorf("export repository: ref %q: %w", name, err)
		}
		if seen.Has(h) {
			continue
		}
		seen.Add(h)
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i].String() < hashes[j].String() })

	objects, err := r.ByHashesWithChildren(hashes, nil, object.DepthUnlimited)
	if err != nil {
		return fmt.Errorf("export repository: %w", err)
	}
	for _, obj := range objects {
		if _, err := w.WriteObject(obj); err != nil {
			return err
		}
	}
	return w.WriteRefs(refs)
}

func (w *Writer) writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
