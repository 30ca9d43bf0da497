package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mtl-dev/mtl/pkg/builder"
	"github.com/mtl-dev/mtl/pkg/object"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInitCreatesMtlDir(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()
	if _, err := os.Stat(r.MtlDir); err != nil {
		t.Fatalf("expected .mtl dir: %v", err)
	}
}

func TestInitFailsIfAlreadyInitialized(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	r.Close()

	if _, err := Init(root); err == nil {
		t.Fatal("expected second Init to fail")
	}
}

func TestOpenFindsRepositoryFromSubdirectory(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	r.Close()

	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	opened, err := Open(sub)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opened.Close()
	if opened.RootDir != root {
		t.Errorf("RootDir = %q, want %q", opened.RootDir, root)
	}
}

func TestOpenFailsOutsideRepository(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected Open to fail outside any repository")
	}
}

func TestHeadIsEmptyTreeBeforeFirstBuild(t *testing.T) {
	root := t.TempDir()
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head before build: %v", err)
	}
	if want := object.HashTree(nil); head != want {
		t.Fatalf("Head before build = %s, want empty tree %s", head, want)
	}
}

func TestBuildSetsHead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	oid, err := r.Build(context.Background(), builder.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != oid {
		t.Errorf("Head = %s, want %s", head, oid)
	}
}

func TestUpdateAdvancesHead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	oldOID, err := r.Build(context.Background(), builder.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	writeFile(t, filepath.Join(root, "a.txt"), "a-changed")
	newOID, err := r.Update(context.Background(), "a.txt", builder.Options{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if newOID == oldOID {
		t.Error("Update should produce a different OID after a content change")
	}
	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != newOID {
		t.Errorf("Head = %s, want %s", head, newOID)
	}
}

func TestRefsRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	oid, err := r.Build(context.Background(), builder.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := r.SaveRef("stable", oid); err != nil {
		t.Fatalf("SaveRef: %v", err)
	}
	refs, err := r.ListRefs()
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if len(refs) != 1 || refs[0].Name != "stable" {
		t.Fatalf("ListRefs: got %+v", refs)
	}
	if err := r.DeleteRef("stable"); err != nil {
		t.Fatalf("DeleteRef: %v", err)
	}
	refs, err = r.ListRefs()
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("ListRefs after delete: got %+v", refs)
	}
}

func TestGCRemovesUnreachableObjectsButKeepsRefTargets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	firstOID, err := r.Build(context.Background(), builder.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := r.SaveRef("keep", firstOID); err != nil {
		t.Fatalf("SaveRef: %v", err)
	}

	writeFile(t, filepath.Join(root, "a.txt"), "a-changed")
	if _, err := r.Build(context.Background(), builder.Options{}); err != nil {
		t.Fatalf("Build 2: %v", err)
	}
	if err := r.DeleteRef("keep"); err != nil {
		t.Fatalf("DeleteRef: %v", err)
	}
	if err := r.SaveRef("keep", firstOID); err != nil {
		t.Fatalf("SaveRef: %v", err)
	}

	summary, err := r.GC()
	if err != nil {
		t.Fatalf("GC: %v", err)
	}
	if summary.Reachable == 0 {
		t.Error("expected a nonzero reachable set")
	}
	if _, err := r.Store.Get(firstOID); err != nil {
		t.Errorf("ref-held snapshot should survive GC: %v", err)
	}
}

func TestGCDryRunReportsWithoutDeleting(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	firstOID, err := r.Build(context.Background(), builder.Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	writeFile(t, filepath.Join(root, "a.txt"), "a-changed")
	if _, err := r.Build(context.Background(), builder.Options{}); err != nil {
		t.Fatalf("Build 2: %v", err)
	}

	dead, err := r.GCDryRun()
	if err != nil {
		t.Fatalf("GCDryRun: %v", err)
	}
	if len(dead) == 0 {
		t.Error("expected the prior snapshot to be reported as unreachable")
	}
	if _, err := r.Store.Get(firstOID); err != nil {
		t.Errorf("dry run must not delete anything: %v", err)
	}
}

func TestPackMigratesBuiltObjects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	r, err := Init(root)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	if _, err := r.Build(context.Background(), builder.Options{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	summary, err := r.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if summary.Migrated == 0 {
		t.Error("expected at least one object migrated into the pack")
	}
}
