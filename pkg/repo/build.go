package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mtl-dev/mtl/internal/mtlerr"
	"github.com/mtl-dev/mtl/pkg/builder"
	"github.com/mtl-dev/mtl/pkg/object"
)

func (r *Repo) headPath() string {
	return filepath.Join(r.MtlDir, "HEAD")
}

// Head returns the OID HEAD currently points at. It lives as a plain text
// file rather than an entry in the ref store, matching a single-slot
// pointer that every build advances.
func (r *Repo) Head() (object.OID, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		if os.IsNotExist(err) {
			return object.ZeroOID, fmt.Errorf("%w: HEAD is unset, run a build first", mtlerr.ErrNotFound)
		}
		return object.ZeroOID, fmt.Errorf("%w: read HEAD: %v", mtlerr.ErrIO, err)
	}
	oid, err := object.ParseOID(strings.TrimSuffix(string(data), "\n"))
	if err != nil {
		return object.ZeroOID, fmt.Errorf("%w: HEAD: %v", mtlerr.ErrCorrupt, err)
	}
	return oid, nil
}

// SetHead points HEAD at oid, writing the file atomically via a temp
// file and rename so a crash mid-write never leaves a truncated HEAD.
func (r *Repo) SetHead(oid object.OID) error {
	tmp, err := os.CreateTemp(r.MtlDir, ".HEAD-tmp-*")
	if err != nil {
		return fmt.Errorf("%w: HEAD tmpfile: %v", mtlerr.ErrIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(oid.String() + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write HEAD: %v", mtlerr.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close HEAD tmpfile: %v", mtlerr.ErrIO, err)
	}
	if err := os.Rename(tmpName, r.headPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename HEAD: %v", mtlerr.ErrIO, err)
	}
	return nil
}

// Build walks RootDir and writes a fresh snapshot, pointing HEAD at the
// resulting root tree.
func (r *Repo) Build(ctx context.Context, opts builder.Options) (object.OID, error) {
	oid, err := builder.Build(ctx, r.Store, r.RootDir, opts)
	if err != nil {
		return object.ZeroOID, err
	}
	if err := r.SetHead(oid); err != nil {
		return object.ZeroOID, err
	}
	return oid, nil
}

// Update re-folds only the ancestor chain of relPath against the current
// HEAD snapshot, then points HEAD at the result. opts only affects the
// case where the changed path turns out to now be a directory, which
// requires a fresh sub-walk.
func (r *Repo) Update(ctx context.Context, relPath string, opts builder.Options) (object.OID, error) {
	oldHead, err := r.Head()
	if err != nil {
		return object.ZeroOID, err
	}
	newHead, err := builder.Update(ctx, r.Store, r.RootDir, relPath, oldHead, opts)
	if err != nil {
		return object.ZeroOID, err
	}
	if err := r.SetHead(newHead); err != nil {
		return object.ZeroOID, err
	}
	return newHead, nil
}
