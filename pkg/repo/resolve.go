package repo

import "github.com/mtl-dev/mtl/pkg/resolve"

// Resolver returns an object-expression resolver bound to this
// repository's stores, with "HEAD" backed by the repository's own
// plain-text HEAD file rather than a ref lookup.
func (r *Repo) Resolver() *resolve.Resolver {
	return resolve.New(r.Store, r.Refs, r.Head)
}
