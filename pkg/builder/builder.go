// Package builder implements the four-phase pipeline that turns a
// directory on disk into a tree object graph: collection (drain the
// walker), parallel file hashing, bottom-up tree folding, and finalize
// (produce the root tree's OID, ready for the caller to point a ref or
// HEAD at).
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mtl-dev/mtl/internal/mtlerr"
	"github.com/mtl-dev/mtl/pkg/object"
	"github.com/mtl-dev/mtl/pkg/walker"
)

// Options configures a build. It mirrors walker.Options directly since the
// Builder's own concurrency and filtering are inherited from the walk.
type Options struct {
	Hidden          bool
	IncludeList     []string
	Threads         int
	IgnoreFileNames []string
}

func (o Options) walkerOptions() walker.Options {
	return walker.Options{
		Hidden:          o.Hidden,
		IncludeList:     o.IncludeList,
		Threads:         o.Threads,
		IgnoreFileNames: o.IgnoreFileNames,
	}
}

// dirNode tracks one directory's in-progress fold. pending counts
// not-yet-resolved children; when it reaches zero the directory's own
// tree object can be computed and handed up to its parent, which may in
// turn reach zero and cascade further — this is the "dependency-counted
// per directory" fold: there is no global barrier between depth levels,
// so an early-finishing subtree folds as soon as it's ready regardless of
// what siblings elsewhere in the tree are still doing.
type dirNode struct {
	relPath string
	name    string
	parent  *dirNode

	pending atomic.Int64
	folded  atomic.Bool

	mu      sync.Mutex
	entries []object.TreeEntry
}

func (d *dirNode) addEntry(e object.TreeEntry) {
	d.mu.Lock()
	d.entries = append(d.entries, e)
	d.mu.Unlock()
}

func (d *dirNode) snapshot() []object.TreeEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]object.TreeEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Build walks root and produces a tree object graph in store, returning
// the OID of root's own tree object.
func Build(ctx context.Context, store *object.Store, root string, opts Options) (object.OID, error) {
	entries, wait := walker.Walk(ctx, root, opts.walkerOptions())

	nodes := map[string]*dirNode{}
	var fileRelPaths []string
	var rootNode *dirNode

	for e := range entries {
		switch e.Kind {
		case object.KindTree:
			n := &dirNode{relPath: e.RelPath, name: filepath.Base(e.RelPath)}
			nodes[e.RelPath] = n
			if e.RelPath == "." {
				n.name = ""
				rootNode = n
			}
		case object.KindFile:
			fileRelPaths = append(fileRelPaths, e.RelPath)
		}
	}
	if err := wait(); err != nil {
		return 0, err
	}
	if rootNode == nil {
		return 0, fmt.Errorf("%w: walk produced no root entry", mtlerr.ErrIO)
	}

	// An include list can leave ancestor directories unemitted by the
	// walker; synthesize them so every entry has a parent to fold into.
	emitted := append([]string{}, fileRelPaths...)
	for relPath := range nodes {
		emitted = append(emitted, relPath)
	}
	for _, relPath := range emitted {
		for p := parentOf(relPath); p != "."; p = parentOf(p) {
			if _, ok := nodes[p]; !ok {
				nodes[p] = &dirNode{relPath: p, name: filepath.Base(p)}
			}
		}
	}

	for relPath, n := range nodes {
		if relPath == "." {
			continue
		}
		parentPath := parentOf(relPath)
		parent, ok := nodes[parentPath]
		if !ok {
			return 0, fmt.Errorf("%w: directory %q has no registered parent %q", mtlerr.ErrIO, relPath, parentPath)
		}
		n.parent = parent
		parent.pending.Add(1)
	}
	for _, relPath := range fileRelPaths {
		parentPath := parentOf(relPath)
		parent, ok := nodes[parentPath]
		if !ok {
			return 0, fmt.Errorf("%w: file %q has no registered parent %q", mtlerr.ErrIO, relPath, parentPath)
		}
		parent.pending.Add(1)
	}

	threads := opts.Threads
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(threads))
	rootOIDHolder := &oidBox{}

	var fold func(n *dirNode) error
	fold = func(n *dirNode) error {
		if !n.folded.CompareAndSwap(false, true) {
			return nil
		}
		snap := n.snapshot()
		if len(snap) == 0 && n.parent != nil {
			// An empty non-root directory is dropped from its parent
			// rather than written as an empty tree.
			if n.parent.pending.Add(-1) == 0 {
				return fold(n.parent)
			}
			return nil
		}
		oid := object.HashTree(snap)
		if err := store.PutTree(oid, snap); err != nil {
			return err
		}
		if n.parent == nil {
			rootOIDHolder.set(oid)
			return nil
		}
		n.parent.addEntry(object.TreeEntry{Kind: object.KindTree, OID: oid, Name: n.name})
		if n.parent.pending.Add(-1) == 0 {
			return fold(n.parent)
		}
		return nil
	}

	for _, n := range nodes {
		if n.relPath != "." && n.pending.Load() == 0 {
			n := n
			if err := fold(n); err != nil {
				return 0, err
			}
		}
	}

	for _, relPath := range fileRelPaths {
		relPath := relPath
		absPath := filepath.Join(root, relPath)
		parent := nodes[parentOf(relPath)]
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			data, err := os.ReadFile(absPath)
			if err != nil {
				return fmt.Errorf("%w: read %s: %v", mtlerr.ErrIO, absPath, err)
			}
			oid := object.HashFileBytes(data)
			if err := store.PutFile(oid, data); err != nil {
				return err
			}
			parent.addEntry(object.TreeEntry{Kind: object.KindFile, OID: oid, Name: filepath.Base(relPath)})
			if parent.pending.Add(-1) == 0 {
				return fold(parent)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	if !rootNode.folded.Load() {
		if err := fold(rootNode); err != nil {
			return 0, err
		}
	}
	return rootOIDHolder.get(), nil
}

// oidBox lets fold hand the final root OID back out of the recursive
// closure without the closure itself needing a return path all the way
// through the fold cascade.
type oidBox struct {
	mu  sync.Mutex
	oid object.OID
}

func (b *oidBox) set(oid object.OID) {
	b.mu.Lock()
	b.oid = oid
	b.mu.Unlock()
}

func (b *oidBox) get() object.OID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.oid
}

func parentOf(relPath string) string {
	idx := strings.LastIndexByte(relPath, '/')
	if idx < 0 {
		return "."
	}
	return relPath[:idx]
}

// Update re-folds only the ancestor chain of relPath instead of walking the
// whole tree: it reads each ancestor directory's existing entries straight
// out of oldRoot, replaces the one changed entry, and rehashes upward. This
// is the incremental counterpart to Build, used after a single-path edit.
func Update(ctx context.Context, store *object.Store, root, relPath string, oldRoot object.OID, opts Options) (object.OID, error) {
	relPath = strings.Trim(filepath.ToSlash(relPath), "/")
	if relPath == "" || relPath == "." {
		return Build(ctx, store, root, opts)
	}

	parts := strings.Split(relPath, "/")
	dirChain := parts[:len(parts)-1]
	leafName := parts[len(parts)-1]

	type ancestor struct {
		name    string // this directory's name within its own parent
		entries []object.TreeEntry
	}
	oldTrees := make([]ancestor, 0, len(dirChain)+1)

	cur := oldRoot
	oldTrees = append(oldTrees, ancestor{name: ""})
	for _, name := range dirChain {
		tree, err := store.GetTree(cur)
		if err != nil {
			return 0, fmt.Errorf("update: read ancestor: %w", err)
		}
		oldTrees[len(oldTrees)-1].entries = tree.Entries
		next, ok := findEntry(tree.Entries, name)
		if !ok {
			return 0, fmt.Errorf("%w: %s", mtlerr.ErrPathNotFound, relPath)
		}
		if next.Kind != object.KindTree {
			return 0, fmt.Errorf("%w: %s", mtlerr.ErrNotATree, strings.Join(dirChain, "/"))
		}
		cur = next.OID
		oldTrees = append(oldTrees, ancestor{name: name})
	}
	leafTree, err := store.GetTree(cur)
	if err != nil {
		return 0, fmt.Errorf("update: read leaf directory: %w", err)
	}
	oldTrees[len(oldTrees)-1].entries = leafTree.Entries

	absPath := filepath.Join(root, relPath)
	var newLeaf *object.TreeEntry
	info, statErr := os.Lstat(absPath)
	switch {
	case os.IsNotExist(statErr):
		newLeaf = nil
	case statErr != nil:
		return 0, fmt.Errorf("%w: stat %s: %v", mtlerr.ErrIO, absPath, statErr)
	case info.IsDir():
		oid, err := Build(ctx, store, absPath, opts)
		if err != nil {
			return 0, err
		}
		newLeaf = &object.TreeEntry{Kind: object.KindTree, OID: oid, Name: leafName}
	default:
		data, err := os.ReadFile(absPath)
		if err != nil {
			return 0, fmt.Errorf("%w: read %s: %v", mtlerr.ErrIO, absPath, err)
		}
		oid := object.HashFileBytes(data)
		if err := store.PutFile(oid, data); err != nil {
			return 0, err
		}
		newLeaf = &object.TreeEntry{Kind: object.KindFile, OID: oid, Name: leafName}
	}

	// current holds the in-progress new entries for the directory at
	// oldTrees[i], starting at the leaf directory and folding upward. A
	// directory that ends up with no entries is dropped from its parent
	// rather than written as an empty tree, matching Build's behavior for
	// non-root directories; the root is always written.
	current := replaceEntry(oldTrees[len(oldTrees)-1].entries, leafName, newLeaf)
	for i := len(oldTrees) - 1; i >= 1; i-- {
		var newEntry *object.TreeEntry
		if len(current) > 0 {
			oid := object.HashTree(current)
			if err := store.PutTree(oid, current); err != nil {
				return 0, err
			}
			e := object.TreeEntry{Kind: object.KindTree, OID: oid, Name: oldTrees[i].name}
			newEntry = &e
		}
		current = replaceEntry(oldTrees[i-1].entries, oldTrees[i].name, newEntry)
	}
	rootOID := object.HashTree(current)
	if err := store.PutTree(rootOID, current); err != nil {
		return 0, err
	}
	return rootOID, nil
}

func findEntry(entries []object.TreeEntry, name string) (object.TreeEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return object.TreeEntry{}, false
}

// replaceEntry returns a copy of entries with any existing item named name
// removed, then the replacement appended if non-nil.
func replaceEntry(entries []object.TreeEntry, name string, replacement *object.TreeEntry) []object.TreeEntry {
	out := make([]object.TreeEntry, 0, len(entries)+1)
	for _, e := range entries {
		if e.Name == name {
			continue
		}
		out = append(out, e)
	}
	if replacement != nil {
		out = append(out, *replacement)
	}
	return out
}
