// Package walker implements the parallel, ignore-aware filesystem scan
// that feeds the Builder: a bounded-concurrency traversal emitting a lazy,
// unordered stream of file and directory entries relative to a root.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mtl-dev/mtl/internal/mtlerr"
	"github.com/mtl-dev/mtl/pkg/object"
)

// Entry is one item discovered by the walk.
type Entry struct {
	Kind    object.Kind
	RelPath string // "." for the walk root itself
	AbsPath string
}

// Options configures a walk.
type Options struct {
	// Hidden includes dotfiles and dot-directories when true. Default
	// (false) skips any entry whose basename starts with ".", except for
	// the root itself.
	Hidden bool

	// IncludeList, when non-empty, restricts emission to entries whose
	// relative path (interpreted relative to the walk root) exactly
	// matches one of these paths. Traversal is pruned to directories that
	// are a prefix of, or equal to, some included path. Ancestor
	// directories implied by an included path but not themselves listed
	// are not emitted — the Builder synthesizes them.
	IncludeList []string

	// Threads bounds walker concurrency. Zero means runtime.NumCPU().
	Threads int

	// IgnoreFileNames lists the per-directory ignore file names consulted
	// during the walk, in precedence order (later files win ties within
	// the same directory). Empty means DefaultIgnoreFileNames.
	IgnoreFileNames []string
}

// Walk starts a bounded-concurrency traversal of root and returns a
// channel of entries plus a function that blocks until the walk finishes
// and returns its error, if any. The channel is closed once the walk
// completes (successfully or not); callers should drain it before calling
// the wait function to avoid deadlocking producers on a full buffer.
func Walk(ctx context.Context, root string, opts Options) (<-chan Entry, func() error) {
	threads := opts.Threads
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	out := make(chan Entry, 256)

	info, err := os.Stat(root)
	if err != nil {
		close(out)
		return out, func() error { return fmt.Errorf("%w: stat root: %v", mtlerr.ErrIO, err) }
	}
	if !info.IsDir() {
		close(out)
		return out, func() error { return fmt.Errorf("%w: walk root %q is not a directory", mtlerr.ErrIO, root) }
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(threads))
	include := newIncludeFilter(opts.IncludeList)
	ignoreFileNames := opts.IgnoreFileNames
	if len(ignoreFileNames) == 0 {
		ignoreFileNames = DefaultIgnoreFileNames
	}

	var pending atomic.Int64
	pending.Add(1)

	var dispatch func(absDir, relDir string, chain []scope)
	dispatch = func(absDir, relDir string, chain []scope) {
		g.Go(func() error {
			defer func() {
				if pending.Add(-1) == 0 {
					close(out)
				}
			}()
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			scopeRules := loadScopeRules(absDir, ignoreFileNames)
			childChain := chain
			if len(scopeRules) > 0 {
				childChain = append(append([]scope{}, chain...), scope{dir: relDir, rules: scopeRules})
			}

			dirEntries, err := os.ReadDir(absDir)
			if err != nil {
				return fmt.Errorf("%w: read dir %s: %v", mtlerr.ErrIO, absDir, err)
			}

			for _, de := range dirEntries {
				name := de.Name()
				relPath := name
				if relDir != "." {
					relPath = relDir + "/" + name
				}

				if !opts.Hidden && strings.HasPrefix(name, ".") {
					continue
				}
				if isIgnored(childChain, relPath, de.IsDir()) {
					continue
				}
				descend := de.IsDir()
				if descend && !include.mayContain(relPath) {
					descend = false
				}
				if include.allows(relPath) {
					kind := object.KindFile
					if de.IsDir() {
						kind = object.KindTree
					}
					select {
					case out <- Entry{Kind: kind, RelPath: relPath, AbsPath: filepath.Join(absDir, name)}:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
				if descend {
					pending.Add(1)
					dispatch(filepath.Join(absDir, name), relPath, childChain)
				}
			}
			return nil
		})
	}

	if include.allows(".") {
		out <- Entry{Kind: object.KindTree, RelPath: ".", AbsPath: root}
	}
	dispatch(root, ".", nil)

	return out, g.Wait
}

// includeFilter implements the IncludeList restriction: nil/empty means
// "include everything".
type includeFilter struct {
	set    map[string]struct{}
	prefix []string // sorted include paths, used for mayContain's prefix test
}

func newIncludeFilter(list []string) *includeFilter {
	if len(list) == 0 {
		return &includeFilter{}
	}
	set := make(map[string]struct{}, len(list))
	prefix := make([]string, 0, len(list))
	for _, p := range list {
		p = strings.TrimSuffix(p, "/")
		set[p] = struct{}{}
		prefix = append(prefix, p)
	}
	sort.Strings(prefix)
	return &includeFilter{set: set, prefix: prefix}
}

func (f *includeFilter) allows(relPath string) bool {
	if f.set == nil {
		return true
	}
	if relPath == "." {
		return true
	}
	_, ok := f.set[relPath]
	return ok
}

// mayContain reports whether descending into the directory at relPath
// could reach any included path: relPath is a prefix of, or equal to,
// some entry in the include list.
func (f *includeFilter) mayContain(relPath string) bool {
	if f.set == nil {
		return true
	}
	for _, p := range f.prefix {
		if p == relPath || strings.HasPrefix(p, relPath+"/") {
			return true
		}
	}
	return false
}
