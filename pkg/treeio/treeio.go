// Package treeio implements read-side traversal of tree objects: decoding
// a tree and walking its descendants in pre-order, independent of how the
// root OID was resolved.
package treeio

import (
	"fmt"
	"sort"

	"github.com/mtl-dev/mtl/pkg/object"
)

// Options configures a Walk.
type Options struct {
	// MaxDepth limits how far below root the walk descends. Zero (the
	// default) means unlimited. Depth 1 emits root's immediate children
	// only, not their contents.
	MaxDepth int

	// TypeFilter, when non-nil, restricts emitted entries to one kind.
	// Traversal still descends through trees that are filtered out, since
	// their contents may still match.
	TypeFilter *object.Kind

	// RootLabel is the path printed for root itself; "." if unset.
	RootLabel string
}

// Entry is one node visited by Walk.
type Entry struct {
	Path  string
	Depth int
	Kind  object.Kind
	OID   object.OID
}

// Walk decodes root and its descendants from store, emitting a pre-order
// sequence: a directory is always emitted (subject to TypeFilter) before
// its children, and siblings are visited in name order.
func Walk(store *object.Store, root object.OID, opts Options) ([]Entry, error) {
	label := opts.RootLabel
	if label == "" {
		label = "."
	}

	var out []Entry
	var recurse func(oid object.OID, path string, depth int) error
	recurse = func(oid object.OID, path string, depth int) error {
		if opts.TypeFilter == nil || *opts.TypeFilter == object.KindTree {
			out = append(out, Entry{Path: path, Depth: depth, Kind: object.KindTree, OID: oid})
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return nil
		}

		tree, err := store.GetTree(oid)
		if err != nil {
			return fmt.Errorf("treeio: decode %s: %w", path, err)
		}
		entries := make([]object.TreeEntry, len(tree.Entries))
		copy(entries, tree.Entries)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

		for _, e := range entries {
			childPath := e.Name
			if depth > 0 {
				childPath = path + "/" + e.Name
			}
			if e.Kind == object.KindTree {
				if err := recurse(e.OID, childPath, depth+1); err != nil {
					return err
				}
				continue
			}
			if opts.TypeFilter == nil || *opts.TypeFilter == object.KindFile {
				out = append(out, Entry{Path: childPath, Depth: depth + 1, Kind: object.KindFile, OID: e.OID})
			}
		}
		return nil
	}

	if err := recurse(root, label, 0); err != nil {
		return nil, err
	}
	return out, nil
}
