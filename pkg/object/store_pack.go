package object

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"

	"github.com/mtl-dev/mtl/internal/mtlerr"
)

// packTier is the embedded-KV packed tier: a pebble table keyed by raw
// 8-byte big-endian OID, valued by zstd-compressed object payload. It is
// opened lazily so that repositories that never run `mtl pack` never
// create pack/packed.db on disk.
type packTier struct {
	path string

	mu      sync.Mutex
	db      *pebble.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newPackTier(path string) *packTier {
	return &packTier{path: path}
}

func (p *packTier) ensureOpen() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return nil
	}
	db, err := pebble.Open(p.path, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("%w: open pack store: %v", mtlerr.ErrIO, err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return fmt.Errorf("%w: init compressor: %v", mtlerr.ErrIO, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		enc.Close()
		return fmt.Errorf("%w: init decompressor: %v", mtlerr.ErrIO, err)
	}
	p.db = db
	p.encoder = enc
	p.decoder = dec
	return nil
}

func oidKey(oid OID) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(oid))
	return buf[:]
}

// has reports whether oid is present in the packed tier.
func (p *packTier) has(oid OID) (bool, error) {
	if !p.exists() {
		return false, nil
	}
	if err := p.ensureOpen(); err != nil {
		return false, err
	}
	_, closer, err := p.db.Get(oidKey(oid))
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: pack lookup: %v", mtlerr.ErrIO, err)
	}
	closer.Close()
	return true, nil
}

func (p *packTier) get(oid OID) ([]byte, bool, error) {
	if !p.exists() {
		return nil, false, nil
	}
	if err := p.ensureOpen(); err != nil {
		return nil, false, err
	}
	v, closer, err := p.db.Get(oidKey(oid))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: pack read: %v", mtlerr.ErrIO, err)
	}
	defer closer.Close()

	out, err := p.decoder.DecodeAll(v, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: pack decompress %s: %v", mtlerr.ErrCorrupt, oid, err)
	}
	return out, true, nil
}

// put stores data under oid, compressing it at rest. Used only by Pack;
// the loose tier is the normal write path for newly built objects.
func (p *packTier) put(oid OID, data []byte) error {
	if err := p.ensureOpen(); err != nil {
		return err
	}
	compressed := p.encoder.EncodeAll(data, nil)
	if err := p.db.Set(oidKey(oid), compressed, pebble.Sync); err != nil {
		return fmt.Errorf("%w: pack write: %v", mtlerr.ErrIO, err)
	}
	return nil
}

// delete removes oid from the packed tier, if present.
func (p *packTier) delete(oid OID) error {
	if !p.exists() {
		return nil
	}
	if err := p.ensureOpen(); err != nil {
		return err
	}
	if err := p.db.Delete(oidKey(oid), pebble.Sync); err != nil {
		return fmt.Errorf("%w: pack delete: %v", mtlerr.ErrIO, err)
	}
	return nil
}

// iter returns every OID in the packed tier, sorted ascending (pebble
// iterates keys in byte order, which matches the big-endian OID encoding).
func (p *packTier) iter() ([]OID, error) {
	if !p.exists() {
		return nil, nil
	}
	if err := p.ensureOpen(); err != nil {
		return nil, err
	}
	it, err := p.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: pack iterator: %v", mtlerr.ErrIO, err)
	}
	defer it.Close()

	var oids []OID
	for it.First(); it.Valid(); it.Next() {
		key := it.Key()
		if len(key) != 8 {
			continue
		}
		oids = append(oids, OID(binary.BigEndian.Uint64(key)))
	}
	return oids, nil
}

func (p *packTier) exists() bool {
	p.mu.Lock()
	opened := p.db != nil
	p.mu.Unlock()
	if opened {
		return true
	}
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *packTier) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.encoder != nil {
		p.encoder.Close()
	}
	if p.decoder != nil {
		p.decoder.Close()
	}
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
