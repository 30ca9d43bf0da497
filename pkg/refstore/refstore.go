// Package refstore implements the ref namespace: a flat name -> OID table,
// backed by the same embedded KV engine as the object store's packed tier.
package refstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/mtl-dev/mtl/internal/mtlerr"
	"github.com/mtl-dev/mtl/pkg/object"
)

// reservedName is never a valid ref: it is the single-slot pointer tracked
// separately by the repository, not a named ref.
const reservedName = "HEAD"

// delimiter may not appear in a ref name; it is reserved for future
// namespacing (e.g. "remote:name") and for object-expression parsing,
// which splits an expression into ref-or-OID and path on this character.
const delimiter = ":"

// Entry is one (name, OID) pair as returned by List.
type Entry struct {
	Name string
	OID  object.OID
}

// Store is the pebble-backed ref table.
type Store struct {
	path string

	mu sync.Mutex
	db *pebble.DB
}

// Open returns a Store backed by the table at path. The table is opened,
// and created if absent, on the first Save, Get, Delete or List; Open
// itself never touches disk.
func Open(path string) *Store {
	return &Store{path: path}
}

func (s *Store) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return nil
	}
	db, err := pebble.Open(s.path, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("%w: open ref store: %v", mtlerr.ErrIO, err)
	}
	s.db = db
	return nil
}

// ValidateName reports whether name is usable as a ref name: non-empty,
// not the reserved "HEAD", and free of the ":" delimiter. It does not
// check whether the ref already exists — Save performs no existence
// validation, matching plain name -> OID overwrite semantics.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: ref name must not be empty", mtlerr.ErrInvalidRefName)
	}
	if name == reservedName {
		return fmt.Errorf("%w: %q is reserved for HEAD", mtlerr.ErrInvalidRefName, reservedName)
	}
	if strings.Contains(name, delimiter) {
		return fmt.Errorf("%w: ref name %q must not contain %q", mtlerr.ErrInvalidRefName, name, delimiter)
	}
	return nil
}

// Save points name at oid, creating or overwriting the ref. It does not
// validate that oid refers to an existing object.
func (s *Store) Save(name string, oid object.OID) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.db.Set([]byte(name), []byte(oid.String()), pebble.Sync); err != nil {
		return fmt.Errorf("%w: save ref %q: %v", mtlerr.ErrIO, name, err)
	}
	return nil
}

// Get returns the OID name currently points at.
func (s *Store) Get(name string) (object.OID, error) {
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	v, closer, err := s.db.Get([]byte(name))
	if err == pebble.ErrNotFound {
		return 0, fmt.Errorf("%w: ref %q", mtlerr.ErrNotFound, name)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: read ref %q: %v", mtlerr.ErrIO, name, err)
	}
	defer closer.Close()
	oid, err := object.ParseOID(string(v))
	if err != nil {
		return 0, fmt.Errorf("%w: ref %q: %v", mtlerr.ErrCorrupt, name, err)
	}
	return oid, nil
}

// Delete removes name. Deleting a ref that doesn't exist is not an error,
// matching the behavior of a key-value store's delete-if-present.
func (s *Store) Delete(name string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.db.Delete([]byte(name), pebble.Sync); err != nil {
		return fmt.Errorf("%w: delete ref %q: %v", mtlerr.ErrIO, name, err)
	}
	return nil
}

// List returns every ref, sorted ascending by name.
func (s *Store) List() ([]Entry, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	it, err := s.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: ref iterator: %v", mtlerr.ErrIO, err)
	}
	defer it.Close()

	var entries []Entry
	for it.First(); it.Valid(); it.Next() {
		name := string(it.Key())
		oid, err := object.ParseOID(string(it.Value()))
		if err != nil {
			return nil, fmt.Errorf("%w: ref %q: %v", mtlerr.ErrCorrupt, name, err)
		}
		entries = append(entries, Entry{Name: name, OID: oid})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// AllOIDs returns the OID of every saved ref, used by GC to seed
// reachability roots alongside HEAD (HEAD itself is never stored here —
// see repo.Head).
func (s *Store) AllOIDs() ([]object.OID, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	oids := make([]object.OID, len(entries))
	for i, e := range entries {
		oids[i] = e.OID
	}
	return oids, nil
}

// Close releases the underlying pebble handle, if it was opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
