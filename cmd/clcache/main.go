// Command clcache is a drop-in wrapper for Microsoft's cl.exe that
// caches compilation results. Point your build at clcache instead of
// cl.exe and repeated compilations are served from an on-disk cache.
//
// Besides forwarding compiler invocations it understands a small
// management surface of its own:
//
//	clcache --help      show usage
//	clcache -s          print cache statistics
//	clcache -M <bytes>  set the maximum cache size
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jonastr/clcache/internal/compiler"
	"github.com/jonastr/clcache/internal/config"
	"github.com/jonastr/clcache/internal/lock"
	"github.com/jonastr/clcache/internal/persist"
	"github.com/jonastr/clcache/internal/runner"
	"github.com/jonastr/clcache/internal/trace"
)

const version = "0.1"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "clcache: %v\n", err)
		return 1
	}
	log := trace.Setup(cfg.Verbose)

	switch {
	case len(args) == 1 && args[0] == "--help":
		printHelp()
		return 0
	case len(args) == 1 && args[0] == "-s":
		return printStatistics(cfg)
	case len(args) == 2 && args[0] == "-M":
		return setMaximumSize(cfg, args[1])
	}

	compilerPath, err := compiler.Find(cfg.Compiler)
	if err != nil {
		fmt.Fprintf(os.Stderr,
			"Failed to locate %s on PATH (and CLCACHE_CL is not set), aborting.\n",
			compiler.BinaryName)
		return 1
	}

	r := runner.New(cfg, log, compilerPath, &compiler.Real{Path: compilerPath})
	return r.Run(args)
}

func printHelp() {
	fmt.Printf(`clcache v%s
  --help   : show this help
  -s       : print cache statistics
  -M <size>: set maximum cache size (in bytes)
`, version)
}

// printStatistics reads the persisted documents under the lock so the
// numbers form a consistent snapshot.
func printStatistics(cfg *config.Runtime) int {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "clcache: %v\n", err)
		return 1
	}
	release, err := lock.New(cfg.Dir).Acquire(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "clcache: %v\n", err)
		return 1
	}
	defer release()

	stats := persist.LoadStatistics(cfg.Dir)
	conf := persist.LoadConfiguration(cfg.Dir)
	fmt.Printf(`clcache statistics:
  current cache dir        : %s
  cache size               : %d bytes
  maximum cache size       : %d bytes
  cache entries            : %d
  cache hits               : %d
  cache misses             : %d
  called for linking       : %d
  called w/o sources       : %d
  calls w/ multiple sources: %d
`,
		cfg.Dir,
		stats.CacheSize(),
		conf.MaximumCacheSize(),
		stats.CacheEntries(),
		stats.CacheHits(),
		stats.CacheMisses(),
		stats.CallsForLinking(),
		stats.CallsWithoutSourceFile(),
		stats.CallsWithMultipleSourceFiles())
	return 0
}

func setMaximumSize(cfg *config.Runtime, value string) int {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		fmt.Fprintf(os.Stderr, "clcache: invalid cache size %q\n", value)
		return 1
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "clcache: %v\n", err)
		return 1
	}
	release, err := lock.New(cfg.Dir).Acquire(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "clcache: %v\n", err)
		return 1
	}
	defer release()

	conf := persist.LoadConfiguration(cfg.Dir)
	conf.SetMaximumCacheSize(size)
	if err := conf.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "clcache: %v\n", err)
		return 1
	}
	return 0
}
