package object

import (
	"bufio"
	"io"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Tag bytes prefix every hashed stream so that a file and a tree that
// happen to share byte content never collide on OID.
var (
	fileTag = []byte("file\x00")
	treeTag = []byte("tree\x00")
)

const hashReadBufSize = 64 * 1024

// HashFile computes the OID of file content read from r. The digest does
// not depend on how r chooses to chunk reads: xxhash's Write is
// incremental, so streaming in 64KiB blocks or one giant Read yields the
// same Sum64.
func HashFile(r io.Reader) (OID, error) {
	h := xxhash.New()
	h.Write(fileTag)
	buf := bufio.NewReaderSize(r, hashReadBufSize)
	if _, err := io.Copy(h, buf); err != nil {
		return 0, err
	}
	return OID(h.Sum64()), nil
}

// HashFileBytes is the in-memory convenience form of HashFile.
func HashFileBytes(data []byte) OID {
	h := xxhash.New()
	h.Write(fileTag)
	h.Write(data)
	return OID(h.Sum64())
}

// HashTree computes a tree's OID from its entries. Entries need not be
// pre-sorted: HashTree sorts a copy by Name before folding, so callers
// (the Builder in particular, which accumulates entries as children
// finish in arbitrary order) don't have to maintain ordering themselves.
func HashTree(entries []TreeEntry) OID {
	sorted := sortedEntries(entries)
	h := xxhash.New()
	h.Write(treeTag)
	for _, e := range sorted {
		writeTreeLine(h, e)
	}
	return OID(h.Sum64())
}

func sortedEntries(entries []TreeEntry) []TreeEntry {
	out := make([]TreeEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func writeTreeLine(w io.Writer, e TreeEntry) {
	io.WriteString(w, e.Kind.String())
	w.Write([]byte{0})
	io.WriteString(w, e.OID.String())
	w.Write([]byte{0})
	io.WriteString(w, e.Name)
	w.Write([]byte{0})
}
