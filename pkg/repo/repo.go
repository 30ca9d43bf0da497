// Package repo ties the object store, ref store, and builder together
// into the on-disk layout rooted at a .mtl directory: the unit an
// invocation of the CLI opens and operates against.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mtl-dev/mtl/pkg/object"
	"github.com/mtl-dev/mtl/pkg/refstore"
)

const metadataDirName = ".mtl"

// Repo is an opened repository: a working directory root paired with its
// object store and ref store, both rooted under RootDir/.mtl.
type Repo struct {
	RootDir string
	MtlDir  string
	Store   *object.Store
	Refs    *refstore.Store
}

// Init creates a new repository at path. It fails if a .mtl directory
// already exists there. HEAD starts out pointing at the empty tree, so
// the first real build always has a prior HEAD to supersede.
func Init(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	mtlDir := filepath.Join(abs, metadataDirName)
	if _, err := os.Stat(mtlDir); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", mtlDir)
	}
	if err := os.MkdirAll(mtlDir, 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir %s: %w", mtlDir, err)
	}

	r := open(abs, mtlDir)
	emptyOID := object.HashTree(nil)
	if err := r.Store.PutTree(emptyOID, nil); err != nil {
		return nil, fmt.Errorf("init: write empty tree: %w", err)
	}
	if err := r.SetHead(emptyOID); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return r, nil
}

// OpenOrInit opens the repository containing path, or initializes a new
// one rooted at path if none exists yet.
func OpenOrInit(path string) (*Repo, error) {
	r, err := Open(path)
	if err == nil {
		return r, nil
	}
	return Init(path)
}

// Open searches upward from path for a .mtl directory and opens the
// repository rooted there.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	cur := abs
	for {
		mtlDir := filepath.Join(cur, metadataDirName)
		if info, err := os.Stat(mtlDir); err == nil && info.IsDir() {
			return open(cur, mtlDir), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not an mtl repository (or any parent up to /): %s", abs)
		}
		cur = parent
	}
}

func open(rootDir, mtlDir string) *Repo {
	return &Repo{
		RootDir: rootDir,
		MtlDir:  mtlDir,
		Store:   object.Open(mtlDir),
		Refs:    refstore.Open(filepath.Join(mtlDir, "refs.db")),
	}
}

// Close releases the object and ref store handles.
func (r *Repo) Close() error {
	storeErr := r.Store.Close()
	refsErr := r.Refs.Close()
	if storeErr != nil {
		return storeErr
	}
	return refsErr
}
