package object

import (
	"fmt"
	"os"

	"github.com/mtl-dev/mtl/internal/mtlerr"
)

// PackSummary reports the outcome of Store.Pack.
type PackSummary struct {
	Migrated int
}

// Pack migrates every loose object into the packed tier and removes the
// loose copy once the packed write lands. The migration is safe to
// interrupt: Get always checks the packed tier first, so an object that
// has already landed there is found even if the loose file hasn't been
// removed yet, and any not-yet-migrated object is still found loose.
func (s *Store) Pack() (*PackSummary, error) {
	oids, err := s.IterLoose()
	if err != nil {
		return nil, err
	}

	summary := &PackSummary{}
	for _, oid := range oids {
		if already, err := s.pack.has(oid); err != nil {
			return summary, err
		} else if already {
			_, path := s.looseShardPath(oid)
			os.Remove(path)
			continue
		}

		_, path := s.looseShardPath(oid)
		data, err := os.ReadFile(path)
		if err != nil {
			return summary, fmt.Errorf("%w: read loose object %s: %v", mtlerr.ErrIO, oid, err)
		}
		if err := s.pack.put(oid, data); err != nil {
			return summary, err
		}
		if err := os.Remove(path); err != nil {
			return summary, fmt.Errorf("%w: remove migrated loose object %s: %v", mtlerr.ErrIO, oid, err)
		}
		summary.Migrated++
	}
	return summary, nil
}
