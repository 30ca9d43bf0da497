package repo

import "github.com/mtl-dev/mtl/pkg/object"

// Pack migrates every loose object into the packed tier.
func (r *Repo) Pack() (*object.PackSummary, error) {
	return r.Store.Pack()
}
