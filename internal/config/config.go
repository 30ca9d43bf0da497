// Package config loads .mtl/config.toml, the repository-local defaults
// layered beneath CLI flags: flags override config, config overrides the
// built-in defaults below.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"

	"github.com/mtl-dev/mtl/internal/mtlerr"
)

// Config holds the settings a build or walk may be parameterized by.
type Config struct {
	Threads         int      `toml:"threads"`
	Hidden          bool     `toml:"hidden"`
	IgnoreFileNames []string `toml:"ignore_file_names"`
}

// Default returns the built-in defaults: one worker per CPU, dotfiles
// excluded, and the usual pair of ignore file names.
func Default() Config {
	return Config{
		Threads:         runtime.NumCPU(),
		Hidden:          false,
		IgnoreFileNames: []string{".ignore", ".gitignore"},
	}
}

// Load reads path and overlays it onto Default. A missing file is not an
// error; it simply yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: read config: %v", mtlerr.ErrIO, err)
	}

	var parsed Config
	if _, err := toml.Decode(string(data), &parsed); err != nil {
		return cfg, fmt.Errorf("%w: parse config: %v", mtlerr.ErrIO, err)
	}
	if parsed.Threads > 0 {
		cfg.Threads = parsed.Threads
	}
	if parsed.Hidden {
		cfg.Hidden = true
	}
	if len(parsed.IgnoreFileNames) > 0 {
		cfg.IgnoreFileNames = parsed.IgnoreFileNames
	}
	return cfg, nil
}
