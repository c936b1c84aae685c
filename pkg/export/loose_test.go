package export

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/repofab/repofab/pkg/object"
	"github.com/repofab/repofab/pkg/repo"
)

func buildTestRepo(t *testing.T) *repo.Repository {
	t.Helper()
	r := repo.New()
	b := r.NewBranch("main")

	c := b.Commit("initial import")
	c.SetAuthor(object.Signature{Name: "Ada Lovelace", Email: "ada@example.com"})
	if _, err := c.Insert("docs/readme.md", func(f *object.File) { f.SetContent([]byte("# hi\n")) }); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	c.AnnotatedTag("v0.1.0", "first cut")
	return r
}

func readLoose(t *testing.T, path string) []byte {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("zlib reader: %v", err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	return data
}

func TestWriteObjectRoundTrip(t *testing.T) {
	r := buildTestRepo(t)
	head := r.Branch("main").Head()

	w := NewWriter(t.TempDir())
	sum, err := w.WriteObject(head)
	if err != nil {
		t.Fatalf("WriteObject: %v", err)
	}

	want, err := head.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	got := readLoose(t, w.ObjectPath(sum))
	if !bytes.Equal(got, want) {
		t.Errorf("loose object mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriteObjectIdempotent(t *testing.T) {
	r := buildTestRepo(t)
	head := r.Branch("main").Head()

	w := NewWriter(t.TempDir())
	sum1, err := w.WriteObject(head)
	if err != nil {
		t.Fatalf("WriteObject: %v", err)
	}
	sum2, err := w.WriteObject(head)
	if err != nil {
		t.Fatalf("WriteObject again: %v", err)
	}
	if sum1 != sum2 {
		t.Errorf("hash changed across writes: %s vs %s", sum1, sum2)
	}
}

func TestObjectPathFanOut(t *testing.T) {
	w := NewWriter("root")
	var h object.Hash
	h[0] = 0xab
	h[1] = 0xcd
	want := filepath.Join("root", "objects", "ab", "cd"+strings.Repeat("00", 18))
	if got := w.ObjectPath(h); got != want {
		t.Errorf("ObjectPath: got %q, want %q", got, want)
	}
}

func TestWriteRepository(t *testing.T) {
	r := buildTestRepo(t)
	dir := t.TempDir()
	w := NewWriter(dir)
	if err := w.WriteRepository(r); err != nil {
		t.Fatalf("WriteRepository: %v", err)
	}

	refs, err := r.Refs()
	if err != nil {
		t.Fatalf("Refs: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("refs: got %d, want 2", len(refs))
	}

	// Every object reachable from the refs exists on disk with the right
	// payload.
	hashes := make([]object.Hash, 0, len(refs))
	for _, hex := range refs {
		h, err := object.ParseHash(hex)
		if err != nil {
			t.Fatalf("ParseHash: %v", err)
		}
		hashes = append(hashes, h)
	}
	objs, err := r.ByHashesWithChildren(hashes, nil, object.DepthUnlimited)
	if err != nil {
		t.Fatalf("ByHashesWithChildren: %v", err)
	}
	if len(objs) == 0 {
		t.Fatal("no objects reachable from refs")
	}
	for _, obj := range objs {
		sum, err := obj.Hash()
		if err != nil {
			t.Fatalf("Hash: %v", err)
		}
		want, err := obj.Bytes()
		if err != nil {
			t.Fatalf("Bytes: %v", err)
		}
		got := readLoose(t, w.ObjectPath(sum))
		if !bytes.Equal(got, want) {
			t.Errorf("object %s payload mismatch", sum)
		}
	}

	// The refs listing has one sorted line per ref.
	data, err := os.ReadFile(filepath.Join(dir, "refs"))
	if err != nil {
		t.Fatalf("read refs: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("refs lines: got %d, want 2", len(lines))
	}
	if !strings.HasSuffix(lines[0], " refs/heads/main") {
		t.Errorf("line 0: got %q, want refs/heads/main entry first", lines[0])
	}
	if !strings.HasSuffix(lines[1], " refs/tags/v0.1.0") {
		t.Errorf("line 1: got %q", lines[1])
	}
	for _, line := range lines {
		hex, ref, ok := strings.Cut(line, " ")
		if !ok {
			t.Fatalf("malformed refs line %q", line)
		}
		if refs[ref] != hex {
			t.Errorf("refs line %q does not match Refs()", line)
		}
	}
}
