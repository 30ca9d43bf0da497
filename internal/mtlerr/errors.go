// Package mtlerr defines the sentinel error kinds shared across mtl's
// packages. Call sites wrap them with fmt.Errorf("%w: ...") so errors.Is
// still matches.
package mtlerr

import "errors"

var (
	// ErrNotFound indicates an object, ref, or HEAD is absent.
	ErrNotFound = errors.New("not found")

	// ErrPathNotFound indicates a resolver path component has no matching entry.
	ErrPathNotFound = errors.New("path not found")

	// ErrNotATree indicates an attempt to descend into a file as though it
	// were a tree.
	ErrNotATree = errors.New("not a tree")

	// ErrInvalidExpression indicates a syntactically malformed object
	// expression or OID.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrInvalidRefName indicates a reserved or delimiter-containing ref name.
	ErrInvalidRefName = errors.New("invalid ref name")

	// ErrIO wraps an underlying filesystem or key-value store failure.
	ErrIO = errors.New("io error")

	// ErrCorrupt indicates an object payload could not be decoded as its
	// expected kind.
	ErrCorrupt = errors.New("corrupt object")
)
