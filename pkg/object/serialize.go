package object

import (
	"bytes"
	"fmt"
	"strings"
)

// EncodeTree renders a tree object to its canonical on-disk form: one line
// per entry, sorted by name, tab-separated:
//
//	<kind>\t<oid-16hex>\t<name>\n
//
// HashTree hashes the same sorted (kind, oid, name) tuples, but in its own
// NUL-separated, tag-prefixed form rather than these bytes; since the
// tuples survive a decode unchanged, hashing a decoded tree's entries
// reproduces its OID.
func EncodeTree(entries []TreeEntry) []byte {
	sorted := sortedEntries(entries)
	var buf bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&buf, "%s\t%s\t%s\n", e.Kind, e.OID, e.Name)
	}
	return buf.Bytes()
}

// DecodeTree parses a tree object payload produced by EncodeTree.
func DecodeTree(data []byte) (*Tree, error) {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return &Tree{}, nil
	}
	lines := strings.Split(text, "\n")
	entries := make([]TreeEntry, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: malformed tree line %q", errCorruptTree, line)
		}
		kind, ok := ParseKind(parts[0])
		if !ok {
			return nil, fmt.Errorf("%w: unknown kind %q", errCorruptTree, parts[0])
		}
		oid, err := ParseOID(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errCorruptTree, err)
		}
		entries = append(entries, TreeEntry{Kind: kind, OID: oid, Name: parts[2]})
	}
	return &Tree{Entries: entries}, nil
}
