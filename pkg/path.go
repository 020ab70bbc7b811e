package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// EnvVar returns the environment variable that overrides the named setting,
// e.g. EnvVar("cache_dir") is "TMG_CACHE_DIR".
func EnvVar(setting string) string {
	return strings.ToUpper(Name + "_" + setting)
}

var debugBin = regexp.MustCompile(`^__debug_bin\d*$`)

// Prefix returns the name of the running executable without extension or
// leading dots. Binaries produced by the dlv debugger are reported as [Name].
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		exe, err := os.Executable()
		if err != nil {
			exe = os.Args[0]
		}

		base := filepath.Base(exe)
		base = strings.TrimLeft(strings.TrimSuffix(base, filepath.Ext(base)), ".")

		if base == "" || debugBin.MatchString(base) {
			return Name
		}

		return base
	},
)

// ConfigDir returns the directory holding config.yaml and config.json.
// $TMG_CONFIG_DIR overrides the platform default.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return userDir(EnvVar("config_dir"), os.UserConfigDir, ".config")
	},
)

// CacheDir returns the directory for REPL history and profiles.
// $TMG_CACHE_DIR overrides the platform default.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return userDir(EnvVar("cache_dir"), os.UserCacheDir, ".cache")
	},
)

// userDir resolves a per-user directory for [Prefix]. The lookup order is
// the environment variable env, then platform, then $HOME/home, then the
// working directory.
func userDir(env string, platform func() (string, error), home string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}

	if dir, err := platform(); err == nil {
		return filepath.Join(dir, Prefix())
	}

	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, home, Prefix())
	}

	if dir, err := os.Getwd(); err == nil {
		return filepath.Join(dir, Prefix())
	}

	return Prefix()
}
