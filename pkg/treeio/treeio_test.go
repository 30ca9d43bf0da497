package treeio

import (
	"testing"

	"github.com/mtl-dev/mtl/pkg/object"
)

func buildSample(t *testing.T) (*object.Store, object.OID) {
	t.Helper()
	store := object.Open(t.TempDir())

	fileOID := object.HashFileBytes([]byte("x"))
	if err := store.PutFile(fileOID, []byte("x")); err != nil {
		t.Fatal(err)
	}
	deepEntries := []object.TreeEntry{{Kind: object.KindFile, OID: fileOID, Name: "c.txt"}}
	deepOID := object.HashTree(deepEntries)
	if err := store.PutTree(deepOID, deepEntries); err != nil {
		t.Fatal(err)
	}
	subEntries := []object.TreeEntry{
		{Kind: object.KindFile, OID: fileOID, Name: "b.txt"},
		{Kind: object.KindTree, OID: deepOID, Name: "deep"},
	}
	subOID := object.HashTree(subEntries)
	if err := store.PutTree(subOID, subEntries); err != nil {
		t.Fatal(err)
	}
	rootEntries := []object.TreeEntry{
		{Kind: object.KindFile, OID: fileOID, Name: "a.txt"},
		{Kind: object.KindTree, OID: subOID, Name: "sub"},
	}
	rootOID := object.HashTree(rootEntries)
	if err := store.PutTree(rootOID, rootEntries); err != nil {
		t.Fatal(err)
	}
	return store, rootOID
}

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestWalkPreOrderFullTree(t *testing.T) {
	store, root := buildSample(t)
	entries, err := Walk(store, root, Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{".", "a.txt", "sub", "sub/b.txt", "sub/deep", "sub/deep/c.txt"}
	got := paths(entries)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkMaxDepthOne(t *testing.T) {
	store, root := buildSample(t)
	entries, err := Walk(store, root, Options{MaxDepth: 1})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	got := paths(entries)
	want := []string{".", "a.txt", "sub"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkTypeFilterFilesOnly(t *testing.T) {
	store, root := buildSample(t)
	filter := object.KindFile
	entries, err := Walk(store, root, Options{TypeFilter: &filter})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	for _, e := range entries {
		if e.Kind != object.KindFile {
			t.Errorf("entry %q has kind %v, want KindFile", e.Path, e.Kind)
		}
	}
	got := paths(entries)
	want := []string{"a.txt", "sub/b.txt", "sub/deep/c.txt"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWalkTypeFilterTreesOnly(t *testing.T) {
	store, root := buildSample(t)
	filter := object.KindTree
	entries, err := Walk(store, root, Options{TypeFilter: &filter})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	got := paths(entries)
	want := []string{".", "sub", "sub/deep"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkRootLabel(t *testing.T) {
	store, root := buildSample(t)
	entries, err := Walk(store, root, Options{RootLabel: "HEAD", MaxDepth: 1})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	got := paths(entries)
	want := []string{"HEAD", "a.txt", "sub"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWalkEntriesAreNameSorted(t *testing.T) {
	store, root := buildSample(t)
	entries, err := Walk(store, root, Options{MaxDepth: 1})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if entries[1].Path != "a.txt" || entries[2].Path != "sub" {
		t.Errorf("expected a.txt before sub, got %v", paths(entries))
	}
}
