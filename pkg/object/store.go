package object

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mtl-dev/mtl/internal/mtlerr"
)

// Store is the two-tier content-addressed object store: a loose tier (one
// file per object, 2-char/14-char fan-out directory layout) and a packed
// tier (see store_pack.go). Reads check the packed tier first so that a
// Pack migration can be safely interrupted mid-run: any object not yet
// migrated is still found loose.
type Store struct {
	root string

	pack *packTier
}

// Open returns a Store rooted at dir. dir/objects holds the loose tier;
// dir/pack/packed.db holds the packed tier, opened lazily on first access.
func Open(dir string) *Store {
	return &Store{root: dir, pack: newPackTier(filepath.Join(dir, "pack", "packed.db"))}
}

func (s *Store) looseDir() string {
	return filepath.Join(s.root, "objects")
}

// looseShardPath splits a 16-hex-char OID into a 2-char fan-out directory
// and a 14-char file name.
func (s *Store) looseShardPath(oid OID) (dir, path string) {
	hex := oid.String()
	dir = filepath.Join(s.looseDir(), hex[:2])
	path = filepath.Join(dir, hex[2:])
	return dir, path
}

// Has reports whether oid is present in either tier.
func (s *Store) Has(oid OID) (bool, error) {
	if ok, err := s.pack.has(oid); err != nil {
		return false, err
	} else if ok {
		return true, nil
	}
	_, path := s.looseShardPath(oid)
	if _, err := os.Stat(path); err == nil {
		return true, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("%w: stat %s: %v", mtlerr.ErrIO, path, err)
	}
	return false, nil
}

// Put stores raw object bytes under oid in the loose tier. Put is
// idempotent: writing the same oid twice is a no-op on the second call.
// The write is atomic via temp-file-then-rename so a crash never leaves a
// partially written object visible under its final name.
func (s *Store) Put(oid OID, data []byte) error {
	if ok, err := s.Has(oid); err != nil {
		return err
	} else if ok {
		return nil
	}

	dir, dest := s.looseShardPath(oid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", mtlerr.ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp object: %v", mtlerr.ErrIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write object: %v", mtlerr.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close object: %v", mtlerr.ErrIO, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename object into place: %v", mtlerr.ErrIO, err)
	}
	return nil
}

// Get retrieves the raw payload for oid, checking the packed tier first.
func (s *Store) Get(oid OID) ([]byte, error) {
	if data, ok, err := s.pack.get(oid); err != nil {
		return nil, err
	} else if ok {
		return data, nil
	}

	_, path := s.looseShardPath(oid)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: object %s", mtlerr.ErrNotFound, oid)
		}
		return nil, fmt.Errorf("%w: read object %s: %v", mtlerr.ErrIO, oid, err)
	}
	return data, nil
}

// PutFile is the typed convenience wrapper: store raw file content, keyed
// by its own content hash.
func (s *Store) PutFile(oid OID, content []byte) error {
	return s.Put(oid, content)
}

// GetFile retrieves raw file content by OID.
func (s *Store) GetFile(oid OID) ([]byte, error) {
	return s.Get(oid)
}

// PutTree encodes and stores a tree's entries under its own OID.
func (s *Store) PutTree(oid OID, entries []TreeEntry) error {
	return s.Put(oid, EncodeTree(entries))
}

// GetTree retrieves and decodes a tree object by OID.
func (s *Store) GetTree(oid OID) (*Tree, error) {
	data, err := s.Get(oid)
	if err != nil {
		return nil, err
	}
	tree, err := DecodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", oid, err)
	}
	return tree, nil
}

// Delete removes oid from whichever tier holds it. Used by GC to sweep
// unreachable objects; it is not an error to delete a missing OID.
func (s *Store) Delete(oid OID) error {
	if err := s.pack.delete(oid); err != nil {
		return err
	}
	_, path := s.looseShardPath(oid)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: remove %s: %v", mtlerr.ErrIO, path, err)
	}
	return nil
}

// AllOIDs returns every object currently stored, loose and packed
// combined, de-duplicated and sorted ascending.
func (s *Store) AllOIDs() ([]OID, error) {
	loose, err := s.IterLoose()
	if err != nil {
		return nil, err
	}
	packed, err := s.pack.iter()
	if err != nil {
		return nil, err
	}
	seen := make(map[OID]struct{}, len(loose)+len(packed))
	for _, oid := range loose {
		seen[oid] = struct{}{}
	}
	for _, oid := range packed {
		seen[oid] = struct{}{}
	}
	out := make([]OID, 0, len(seen))
	for oid := range seen {
		out = append(out, oid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// IterLoose lists every OID currently in the loose tier, sorted ascending.
func (s *Store) IterLoose() ([]OID, error) {
	fanouts, err := os.ReadDir(s.looseDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read objects dir: %v", mtlerr.ErrIO, err)
	}

	var oids []OID
	for _, fanout := range fanouts {
		if !fanout.IsDir() || !isHexComponent(fanout.Name(), 2) {
			continue
		}
		shardDir := filepath.Join(s.looseDir(), fanout.Name())
		entries, err := os.ReadDir(shardDir)
		if err != nil {
			return nil, fmt.Errorf("%w: read shard %s: %v", mtlerr.ErrIO, fanout.Name(), err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !isHexComponent(entry.Name(), oidHexLen-2) {
				continue
			}
			oid, err := ParseOID(fanout.Name() + entry.Name())
			if err != nil {
				continue
			}
			oids = append(oids, oid)
		}
	}
	sort.Slice(oids, func(i, j int) bool { return oids[i] < oids[j] })
	return oids, nil
}

// Close releases any resources held by the packed tier (the underlying
// pebble handle, if it was opened).
func (s *Store) Close() error {
	return s.pack.close()
}

func isHexComponent(s string, wantLen int) bool {
	if len(s) != wantLen {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}
