// Package object implements the content-addressed object model: two object
// kinds (file and tree), their canonical encodings, and the loose/packed
// two-tier store that persists them by OID.
package object

import (
	"fmt"
	"strconv"
)

// Kind identifies the two object shapes mtl stores. There is no commit,
// tag, or entity kind: a snapshot is exactly a tree of files and trees.
type Kind uint8

const (
	KindFile Kind = iota
	KindTree
)

// String renders the kind the way it appears in tree lines and diff output.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindTree:
		return "tree"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of String, used when decoding tree lines.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "file":
		return KindFile, true
	case "tree":
		return KindTree, true
	default:
		return 0, false
	}
}

// OID is a content-derived object identifier: the 64-bit xxhash digest of
// an object's canonical encoding. It prints as 16 lowercase hex characters.
type OID uint64

// ZeroOID is never a valid object address; it marks "no object" in contexts
// that need a sentinel (an empty tree's absence, an unset HEAD).
const ZeroOID OID = 0

const oidHexLen = 16

// String renders the OID as fixed-width lowercase hex.
func (o OID) String() string {
	return fmt.Sprintf("%016x", uint64(o))
}

// ParseOID decodes a 16-character lowercase hex string produced by String.
func ParseOID(s string) (OID, error) {
	if len(s) != oidHexLen {
		return 0, fmt.Errorf("%w: oid must be %d hex characters, got %d", errInvalidOID, oidHexLen, len(s))
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errInvalidOID, err)
	}
	return OID(v), nil
}

// LooksLikeOID reports whether s has the shape of an OID literal, without
// validating that the hex digits actually parse (ParseOID does that).
func LooksLikeOID(s string) bool {
	if len(s) != oidHexLen {
		return false
	}
	for _, r := range s {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
		if !isHex {
			return false
		}
	}
	return true
}

// TreeEntry is one line of a tree object: a named, typed pointer to a
// child object.
type TreeEntry struct {
	Kind Kind
	OID  OID
	Name string
}

// Tree is a decoded tree object: a sorted-by-name list of entries.
type Tree struct {
	Entries []TreeEntry
}
