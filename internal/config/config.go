// Package config resolves the runtime configuration from CLCACHE_*
// environment variables, with defaults applied for anything unset.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env"
	koanf "github.com/knadh/koanf/v2"
)

// envPrefix scopes the variables this tool reacts to.
const envPrefix = "CLCACHE_"

// Runtime is the environment-driven configuration consumed by the core.
// The persisted tunables (maximum cache size) live in the cache directory
// itself and are not part of this struct.
type Runtime struct {
	// Dir is the cache root directory (CLCACHE_DIR).
	Dir string

	// Compiler is an explicit compiler binary path (CLCACHE_CL). Empty
	// means the compiler is located by scanning the search path.
	Compiler string

	// Disabled bypasses the cache entirely (CLCACHE_DISABLE set to
	// anything, including the empty string).
	Disabled bool

	// Verbose enables diagnostic tracing (CLCACHE_LOG).
	Verbose bool
}

// NewDefault returns the configuration used when no environment
// overrides are present: cache root under the user's home directory.
func NewDefault() *Runtime {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Runtime{Dir: filepath.Join(home, "clcache")}
}

// Load reads the CLCACHE_* environment and overlays it on the defaults.
func Load() (*Runtime, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, err
	}

	rt := NewDefault()
	if v := k.String("dir"); v != "" {
		rt.Dir = v
	}
	if v := k.String("cl"); v != "" {
		rt.Compiler = v
	}
	rt.Disabled = k.Exists("disable")
	rt.Verbose = k.Exists("log")
	return rt, nil
}
