package repo

import (
	"errors"

	"github.com/mtl-dev/mtl/internal/mtlerr"
	"github.com/mtl-dev/mtl/pkg/object"
)

// GCSummary reports what a GC pass removed.
type GCSummary struct {
	Reachable int
	Removed   int

	// Failed holds one entry per object that could not be deleted. GC
	// continues past these rather than aborting the whole sweep; the
	// caller is expected to log them.
	Failed []DeleteFailure
}

// DeleteFailure pairs an OID GC tried to remove with the error it hit.
type DeleteFailure struct {
	OID object.OID
	Err error
}

// roots returns HEAD (if set) plus every named ref, the set GC treats as
// reachability sources. An unset HEAD contributes no root.
func (r *Repo) roots() ([]object.OID, error) {
	roots, err := r.Refs.AllOIDs()
	if err != nil {
		return nil, err
	}
	if head, err := r.Head(); err == nil {
		roots = append(roots, head)
	} else if !errors.Is(err, mtlerr.ErrNotFound) {
		return nil, err
	}
	return roots, nil
}

// reachableAndDead computes both the reachable set's size and the list of
// objects outside it, sharing a single ReachableSet/AllOIDs pass between
// GC and GCDryRun.
func (r *Repo) reachableAndDead() (reachableCount int, dead []object.OID, err error) {
	roots, err := r.roots()
	if err != nil {
		return 0, nil, err
	}
	reachable, err := r.Store.ReachableSet(roots)
	if err != nil {
		return 0, nil, err
	}
	all, err := r.Store.AllOIDs()
	if err != nil {
		return 0, nil, err
	}
	for _, oid := range all {
		if _, ok := reachable[oid]; !ok {
			dead = append(dead, oid)
		}
	}
	return len(reachable), dead, nil
}

// GC computes the set of objects reachable from HEAD and every named ref,
// then deletes everything else from the object store.
func (r *Repo) GC() (*GCSummary, error) {
	reachableCount, dead, err := r.reachableAndDead()
	if err != nil {
		return nil, err
	}

	summary := &GCSummary{Reachable: reachableCount}
	for _, oid := range dead {
		if err := r.Store.Delete(oid); err != nil {
			summary.Failed = append(summary.Failed, DeleteFailure{OID: oid, Err: err})
			continue
		}
		summary.Removed++
	}
	return summary, nil
}

// GCDryRun reports which objects GC would remove without deleting them.
func (r *Repo) GCDryRun() ([]object.OID, error) {
	_, dead, err := r.reachableAndDead()
	return dead, err
}
