package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mtl-dev/mtl/internal/config"
	"github.com/mtl-dev/mtl/internal/mtlerr"
	"github.com/mtl-dev/mtl/pkg/repo"
)

// openRepo opens the repository containing dir (defaulting to the current
// directory), searching upward for .mtl the same way repo.Open does.
func openRepo(dir string) (*repo.Repo, error) {
	if dir == "" {
		dir = "."
	}
	return repo.Open(dir)
}

// openOrInitRepo opens the repository containing dir, creating a fresh
// .mtl there if none exists yet. Commands that produce a snapshot (build,
// update) use this instead of openRepo so a first run against a bare
// directory doesn't require a separate init step.
func openOrInitRepo(dir string) (*repo.Repo, error) {
	if dir == "" {
		dir = "."
	}
	return repo.OpenOrInit(dir)
}

// loadConfig reads dir/.mtl/config.toml, falling back to built-in
// defaults when the repo or its config file don't exist yet.
func loadConfig(dir string) (config.Config, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: %v", mtlerr.ErrIO, err)
	}
	return config.Load(filepath.Join(abs, ".mtl", "config.toml"))
}

// readIncludeList parses a paths file (or stdin, for path "-") into a
// list of relative paths: one per line, "./" prefix and trailing "/"
// stripped, blank lines skipped. An absolute path is a user-facing I/O
// error, matching the original tool's input validation.
func readIncludeList(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open include list %s: %v", mtlerr.ErrIO, path, err)
		}
		defer f.Close()
		r = f
	}

	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		line = strings.TrimSuffix(strings.TrimPrefix(line, "./"), "/")
		if filepath.IsAbs(line) {
			return nil, fmt.Errorf("%w: absolute path is not supported: %s", mtlerr.ErrIO, line)
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read include list: %v", mtlerr.ErrIO, err)
	}
	return out, nil
}
