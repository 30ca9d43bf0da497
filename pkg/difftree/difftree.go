// Package difftree computes a structural diff between two tree objects:
// the set of files added, removed, modified, or changed in kind (file to
// tree or back) between two content-addressed snapshots.
package difftree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mtl-dev/mtl/pkg/object"
)

// Status identifies the kind of change a Change line represents. There is
// no separate kind-change status: a kind disagreement renders as a
// Removed line for the old kind followed by an Added line for the new
// kind, both at the same path.
type Status string

const (
	Added    Status = "A"
	Removed  Status = "D"
	Modified Status = "M"
)

const blankKindCol = "    "

var blankOIDCol = strings.Repeat(" ", 16)

// Change is one line of a diff: a single path's transition from the old
// side to the new side. For Added, OldOID/OldKind are unused (the old
// side is absent); for Removed, NewOID/NewKind are unused.
type Change struct {
	Status  Status
	Path    string
	OldKind object.Kind
	NewKind object.Kind
	OldOID  object.OID
	NewOID  object.OID
}

// String renders a Change as the tab-separated line the CLI prints:
// "<old-kind-or-blank>/<new-kind-or-blank>\t<old-oid-or-blank>/<new-oid-or-blank>\t<path>".
// A missing side's kind column is four spaces and its OID column is
// sixteen spaces, matching the width of a real "file"/"tree" kind word
// and a real 16-hex-char OID.
func (c Change) String() string {
	leftKind, rightKind := blankKindCol, blankKindCol
	leftOID, rightOID := blankOIDCol, blankOIDCol
	if c.Status != Added {
		leftKind = c.OldKind.String()
		leftOID = c.OldOID.String()
	}
	if c.Status != Removed {
		rightKind = c.NewKind.String()
		rightOID = c.NewOID.String()
	}
	return fmt.Sprintf("%s/%s\t%s/%s\t%s", leftKind, rightKind, leftOID, rightOID, c.Path)
}

// Diff compares oldRoot and newRoot, both addressing trees in store, and
// returns every changed path in pre-order, byte-wise name order within
// each level. Subtrees with identical OIDs on both sides are skipped
// without being read, since content-addressing guarantees their entire
// subtree is unchanged. When the roots themselves differ, the root is
// always the first line (it has the empty Path).
func Diff(store *object.Store, oldRoot, newRoot object.OID) ([]Change, error) {
	if oldRoot == newRoot {
		return nil, nil
	}

	out := []Change{
		{Status: Modified, Path: "", OldKind: object.KindTree, NewKind: object.KindTree, OldOID: oldRoot, NewOID: newRoot},
	}
	if err := diffTrees(store, "", oldRoot, newRoot, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func diffEntry(store *object.Store, path string, oldKind object.Kind, oldOID object.OID, newKind object.Kind, newOID object.OID, out *[]Change) error {
	if oldOID == newOID && oldKind == newKind {
		return nil
	}
	if oldKind != newKind {
		*out = append(*out,
			Change{Status: Removed, Path: path, OldKind: oldKind, OldOID: oldOID},
			Change{Status: Added, Path: path, NewKind: newKind, NewOID: newOID},
		)
		return nil
	}
	if oldKind == object.KindFile {
		*out = append(*out, Change{Status: Modified, Path: path, OldKind: oldKind, NewKind: newKind, OldOID: oldOID, NewOID: newOID})
		return nil
	}

	// Both sides are trees with differing OIDs: the entry itself is
	// modified, and its contents may differ too.
	*out = append(*out, Change{Status: Modified, Path: path, OldKind: oldKind, NewKind: newKind, OldOID: oldOID, NewOID: newOID})
	return diffTrees(store, path, oldOID, newOID, out)
}

func diffTrees(store *object.Store, path string, oldOID, newOID object.OID, out *[]Change) error {
	oldEntries, err := entriesOf(store, oldOID)
	if err != nil {
		return err
	}
	newEntries, err := entriesOf(store, newOID)
	if err != nil {
		return err
	}

	names := mergedNames(oldEntries, newEntries)
	for _, name := range names {
		childPath := name
		if path != "" {
			childPath = path + "/" + name
		}
		oe, oldOK := oldEntries[name]
		ne, newOK := newEntries[name]

		switch {
		case oldOK && newOK:
			if err := diffEntry(store, childPath, oe.Kind, oe.OID, ne.Kind, ne.OID, out); err != nil {
				return err
			}
		case oldOK && !newOK:
			if err := expandOneSided(store, childPath, oe.Kind, oe.OID, Removed, out); err != nil {
				return err
			}
		case !oldOK && newOK:
			if err := expandOneSided(store, childPath, ne.Kind, ne.OID, Added, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// expandOneSided enumerates every file beneath a subtree that exists only
// on one side of the diff, emitting one Change per file. An empty
// directory contributes no lines, matching how the builder never
// represents empty directories as tree objects.
func expandOneSided(store *object.Store, path string, kind object.Kind, oid object.OID, status Status, out *[]Change) error {
	if kind == object.KindFile {
		c := Change{Status: status, Path: path}
		if status == Added {
			c.NewKind, c.NewOID = kind, oid
		} else {
			c.OldKind, c.OldOID = kind, oid
		}
		*out = append(*out, c)
		return nil
	}

	tree, err := store.GetTree(oid)
	if err != nil {
		return err
	}
	entries := make([]object.TreeEntry, len(tree.Entries))
	copy(entries, tree.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, e := range entries {
		childPath := path + "/" + e.Name
		if err := expandOneSided(store, childPath, e.Kind, e.OID, status, out); err != nil {
			return err
		}
	}
	return nil
}

func entriesOf(store *object.Store, oid object.OID) (map[string]object.TreeEntry, error) {
	tree, err := store.GetTree(oid)
	if err != nil {
		return nil, err
	}
	m := make(map[string]object.TreeEntry, len(tree.Entries))
	for _, e := range tree.Entries {
		m[e.Name] = e
	}
	return m, nil
}

func mergedNames(a, b map[string]object.TreeEntry) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for name := range a {
		seen[name] = struct{}{}
	}
	for name := range b {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
