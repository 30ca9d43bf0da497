package object

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestPackMigratesLooseObjects(t *testing.T) {
	s := tempStore(t)
	data := []byte("pack me")
	oid := HashFileBytes(data)
	if err := s.Put(oid, data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	summary, err := s.Pack()
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if summary.Migrated != 1 {
		t.Fatalf("Migrated: got %d, want 1", summary.Migrated)
	}

	hex := oid.String()
	loosePath := filepath.Join(s.root, "objects", hex[:2], hex[2:])
	if _, err := os.Stat(loosePath); !os.IsNotExist(err) {
		t.Errorf("expected loose copy removed after pack, stat err = %v", err)
	}

	got, err := s.Get(oid)
	if err != nil {
		t.Fatalf("Get after pack: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get after pack: got %q, want %q", got, data)
	}
}

func TestPackIsIdempotent(t *testing.T) {
	s := tempStore(t)
	data := []byte("twice")
	oid := HashFileBytes(data)
	if err := s.Put(oid, data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Pack(); err != nil {
		t.Fatalf("Pack 1: %v", err)
	}
	summary, err := s.Pack()
	if err != nil {
		t.Fatalf("Pack 2: %v", err)
	}
	if summary.Migrated != 0 {
		t.Errorf("second Pack should migrate nothing, got %d", summary.Migrated)
	}
}

func TestGetPrefersPackedOverLoose(t *testing.T) {
	s := tempStore(t)
	data := []byte("packed payload")
	oid := HashFileBytes(data)
	if err := s.pack.put(oid, data); err != nil {
		t.Fatalf("pack.put: %v", err)
	}
	// A stale loose copy with different bytes should never be returned
	// once the object is packed: packed lookups take priority.
	if err := s.Put(oid, []byte("stale loose payload would be wrong")); err != nil {
		// Put is a no-op once Has() reports true via the packed tier.
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(oid)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get: got %q, want packed payload %q", got, data)
	}
}

func TestDeleteRemovesLooseObject(t *testing.T) {
	s := tempStore(t)
	data := []byte("delete me")
	oid := HashFileBytes(data)
	if err := s.Put(oid, data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(oid); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if has, err := s.Has(oid); err != nil || has {
		t.Fatalf("Has after delete: got %v, err %v", has, err)
	}
}

func TestDeleteRemovesPackedObject(t *testing.T) {
	s := tempStore(t)
	data := []byte("delete me packed")
	oid := HashFileBytes(data)
	if err := s.Put(oid, data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Pack(); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if err := s.Delete(oid); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if has, err := s.Has(oid); err != nil || has {
		t.Fatalf("Has after delete: got %v, err %v", has, err)
	}
}

func TestDeleteMissingObjectIsNotAnError(t *testing.T) {
	s := tempStore(t)
	if err := s.Delete(OID(0xdeadbeef)); err != nil {
		t.Fatalf("Delete(missing): %v", err)
	}
}

func TestAllOIDsCombinesBothTiers(t *testing.T) {
	s := tempStore(t)
	packedData := []byte("packed")
	packedOID := HashFileBytes(packedData)
	if err := s.Put(packedOID, packedData); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Pack(); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	looseData := []byte("loose")
	looseOID := HashFileBytes(looseData)
	if err := s.Put(looseOID, looseData); err != nil {
		t.Fatalf("Put: %v", err)
	}

	all, err := s.AllOIDs()
	if err != nil {
		t.Fatalf("AllOIDs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("AllOIDs: got %d, want 2", len(all))
	}
}
