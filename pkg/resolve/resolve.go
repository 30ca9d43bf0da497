// Package resolve parses and evaluates object expressions: a base (an OID
// literal, the HEAD ref, or a named ref) followed by an optional
// colon-separated path that descends through tree entries.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mtl-dev/mtl/internal/mtlerr"
	"github.com/mtl-dev/mtl/pkg/object"
	"github.com/mtl-dev/mtl/pkg/refstore"
)

// headName is the reserved base that resolves via head rather than a
// refstore lookup: HEAD lives as a plain-text file outside the ref
// namespace, so it cannot be fetched with refs.Get.
const headName = "HEAD"

// Resolver evaluates expressions of the form
//
//	(hex16 | HEAD | refname) [ ":" path ]
//
// against a given object store and ref store. head supplies HEAD's
// current OID; it is typically repo.Repo.Head.
type Resolver struct {
	store *object.Store
	refs  *refstore.Store
	head  func() (object.OID, error)
}

func New(store *object.Store, refs *refstore.Store, head func() (object.OID, error)) *Resolver {
	return &Resolver{store: store, refs: refs, head: head}
}

// Resolve evaluates expr and returns the OID it addresses.
func (r *Resolver) Resolve(expr string) (object.OID, error) {
	base, path, hasPath := strings.Cut(expr, ":")
	if base == "" {
		return object.ZeroOID, fmt.Errorf("%w: %q has an empty base", mtlerr.ErrInvalidExpression, expr)
	}

	oid, err := r.resolveBase(base)
	if err != nil {
		return object.ZeroOID, err
	}
	if !hasPath {
		return oid, nil
	}
	return r.descend(oid, path)
}

func (r *Resolver) resolveBase(base string) (object.OID, error) {
	if base == headName {
		return r.head()
	}
	if object.LooksLikeOID(base) {
		oid, err := object.ParseOID(base)
		if err != nil {
			return object.ZeroOID, fmt.Errorf("%w: %v", mtlerr.ErrInvalidExpression, err)
		}
		return oid, nil
	}
	oid, err := r.refs.Get(base)
	if err != nil {
		if errors.Is(err, mtlerr.ErrNotFound) {
			return object.ZeroOID, fmt.Errorf("%w: ref %q", mtlerr.ErrNotFound, base)
		}
		return object.ZeroOID, err
	}
	return oid, nil
}

// descend walks path's slash-separated components starting from root,
// which must itself address a tree. Each component must name an entry of
// the current tree; descending through a file component is an error.
func (r *Resolver) descend(root object.OID, path string) (object.OID, error) {
	cur := root
	curKind := object.KindTree

	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if curKind != object.KindTree {
			return object.ZeroOID, fmt.Errorf("%w: cannot descend into %q", mtlerr.ErrNotATree, part)
		}
		tree, err := r.store.GetTree(cur)
		if err != nil {
			return object.ZeroOID, fmt.Errorf("%w: %v", mtlerr.ErrNotATree, err)
		}
		entry, ok := findEntry(tree.Entries, part)
		if !ok {
			return object.ZeroOID, fmt.Errorf("%w: %s", mtlerr.ErrPathNotFound, path)
		}
		cur, curKind = entry.OID, entry.Kind
	}
	return cur, nil
}

func findEntry(entries []object.TreeEntry, name string) (object.TreeEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return object.TreeEntry{}, false
}
