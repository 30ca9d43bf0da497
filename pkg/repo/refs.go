package repo

import (
	"github.com/mtl-dev/mtl/pkg/object"
	"github.com/mtl-dev/mtl/pkg/refstore"
)

// SaveRef names oid under name.
func (r *Repo) SaveRef(name string, oid object.OID) error {
	return r.Refs.Save(name, oid)
}

// DeleteRef removes name, if present.
func (r *Repo) DeleteRef(name string) error {
	return r.Refs.Delete(name)
}

// ListRefs returns every named ref, sorted by name. HEAD is never among
// them; fetch it separately with Head.
func (r *Repo) ListRefs() ([]refstore.Entry, error) {
	return r.Refs.List()
}
