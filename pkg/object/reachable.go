package object

import "fmt"

// ReachableSet returns every OID reachable from roots (each of which is
// known to address a tree — HEAD and every saved ref always do) by
// following tree entries. Missing roots are skipped rather than erroring,
// so GC can run against an empty repository without special-casing it.
func (s *Store) ReachableSet(roots []OID) (map[OID]struct{}, error) {
	out := make(map[OID]struct{})

	type pending struct {
		oid  OID
		kind Kind
	}
	stack := make([]pending, 0, len(roots))
	for _, r := range roots {
		if r != ZeroOID {
			stack = append(stack, pending{oid: r, kind: KindTree})
		}
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := out[cur.oid]; seen {
			continue
		}
		has, err := s.Has(cur.oid)
		if err != nil {
			return nil, err
		}
		if !has {
			continue
		}
		out[cur.oid] = struct{}{}

		if cur.kind != KindTree {
			continue
		}
		tree, err := s.GetTree(cur.oid)
		if err != nil {
			return nil, fmt.Errorf("reachable set: %w", err)
		}
		for _, e := range tree.Entries {
			stack = append(stack, pending{oid: e.OID, kind: e.Kind})
		}
	}
	return out, nil
}
