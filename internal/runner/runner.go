// Package runner wires classification, key derivation, the store, the
// lock, and the persisted documents into the hit/miss control flow of
// one intercepted compiler invocation.
package runner

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/jonastr/clcache/internal/cache"
	"github.com/jonastr/clcache/internal/command"
	"github.com/jonastr/clcache/internal/config"
	"github.com/jonastr/clcache/internal/lock"
	"github.com/jonastr/clcache/internal/persist"
)

// Toolchain is what the runner needs from the real compiler. Satisfied
// by *compiler.Real; tests substitute a fake so no cl.exe is required.
type Toolchain interface {
	// Invoke runs the compiler with inherited stdio.
	Invoke(args []string) (int, error)
	// InvokeCaptured runs the compiler capturing stdout+stderr combined.
	InvokeCaptured(args []string) (int, []byte, error)
	// Preprocess produces the preprocessed source for a command line
	// whose first token is the program name.
	Preprocess(cmdline []string) ([]byte, error)
}

// Runner executes one intercepted invocation end to end.
type Runner struct {
	cfg      *config.Runtime
	log      zerolog.Logger
	compiler string
	tc       Toolchain

	// Stdout receives relayed compiler output; overridable in tests.
	Stdout io.Writer
}

// New builds a runner for the given compiler binary.
func New(cfg *config.Runtime, log zerolog.Logger, compilerPath string, tc Toolchain) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log,
		compiler: compilerPath,
		tc:       tc,
		Stdout:   os.Stdout,
	}
}

// Run handles the compiler arguments (without the program token) and
// returns the process exit code, which mirrors the real compiler's exit
// code on hit, miss, and every fallback path.
func (r *Runner) Run(args []string) int {
	if r.cfg.Disabled {
		return r.passthrough(args)
	}

	expanded, err := command.Expand(args)
	if err != nil {
		r.log.Warn().Err(err).Msg("cannot expand command line, forwarding uncached")
		return r.passthrough(args)
	}
	cmdline := append([]string{r.compiler}, expanded...)

	store, err := cache.NewStore(r.cfg.Dir)
	if err != nil {
		r.log.Warn().Err(err).Msg("cannot open cache, forwarding uncached")
		return r.passthrough(args)
	}

	analysis, _, outputFile := command.Analyze(cmdline)
	if analysis != command.Ok {
		r.log.Info().Stringer("reason", analysis).Strs("cmdline", expanded).
			Msg("invocation not cacheable")
		r.registerUncacheable(store.Root(), analysis)
		return r.passthrough(args)
	}

	key, err := cache.DeriveKey(r.compiler, cmdline, r.tc.Preprocess)
	if err != nil {
		// A failed preprocess means no key, never a cached result.
		r.log.Warn().Err(err).Msg("key derivation failed, forwarding uncached")
		return r.passthrough(args)
	}
	r.log.Debug().Str("key", key).Str("output", outputFile).Msg("key computed")

	if code, served := r.serveHit(store, key, outputFile); served {
		return code
	}
	return r.compileAndStore(store, key, outputFile, args)
}

// serveHit checks for and serves a cached entry. The check, the
// statistics update, and the entry read all happen under the lock so a
// concurrent eviction cannot pull the entry away mid-copy.
func (r *Runner) serveHit(store *cache.Store, key, outputFile string) (int, bool) {
	release, err := lock.New(store.Root()).Acquire(context.Background())
	if err != nil {
		// Fall through to the miss path, which copes with the lock
		// still being busy.
		r.log.Warn().Err(err).Msg("cache busy, skipping lookup")
		return 0, false
	}
	defer release()

	if !store.Exists(key) {
		return 0, false
	}

	stats := r.loadStatistics(store.Root())
	stats.RegisterCacheHit()
	if err := stats.Save(); err != nil {
		r.log.Warn().Err(err).Msg("statistics not saved")
	}

	_, output, err := store.Fetch(key)
	if err == nil {
		err = store.CopyObject(key, outputFile)
	}
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("entry unusable, treating as miss")
		return 0, false
	}

	r.log.Info().Str("key", key).Str("output", outputFile).Msg("cache hit")
	_, _ = r.Stdout.Write(output)
	return 0, true
}

// compileAndStore runs the real compiler (outside the lock) and, on a
// clean compile, stores the result, evicts down to the size limit, and
// persists the statistics.
func (r *Runner) compileAndStore(store *cache.Store, key, outputFile string, args []string) int {
	exitCode, output, err := r.tc.InvokeCaptured(args)
	if err != nil {
		r.log.Error().Err(err).Msg("compiler failed to start")
		return 1
	}

	release, lerr := lock.New(store.Root()).Acquire(context.Background())
	if lerr != nil {
		// The result is still delivered; only the bookkeeping is lost.
		r.log.Warn().Err(lerr).Msg("cache busy, result not recorded")
		_, _ = r.Stdout.Write(output)
		return exitCode
	}
	defer release()

	stats := r.loadStatistics(store.Root())
	stats.RegisterCacheMiss()
	r.log.Info().Str("key", key).Int("exit", exitCode).Msg("cache miss")

	if exitCode == 0 && hasContent(outputFile) {
		if size, err := store.Insert(key, outputFile, output); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("entry not stored")
		} else {
			stats.RegisterCacheEntry(size)
			r.log.Info().Str("key", key).Int64("size", size).Msg("entry added")

			cfg := persist.LoadConfiguration(store.Root())
			if cfg.Recovered() {
				r.log.Warn().Msg("configuration document was corrupt, defaults restored")
			}
			newSize, err := store.Evict(stats.CacheSize(), cfg.MaximumCacheSize())
			if err != nil {
				r.log.Warn().Err(err).Msg("eviction pass failed")
			} else {
				r.log.Debug().Int64("size", newSize).
					Int64("maximum", cfg.MaximumCacheSize()).Msg("store size after eviction")
				stats.SetCacheSize(newSize)
			}
			if err := cfg.Save(); err != nil {
				r.log.Warn().Err(err).Msg("configuration not saved")
			}
		}
	}

	if err := stats.Save(); err != nil {
		r.log.Warn().Err(err).Msg("statistics not saved")
	}
	_, _ = r.Stdout.Write(output)
	return exitCode
}

// registerUncacheable bumps the counter matching a non-Ok
// classification. Losing the count on lock timeout is acceptable; the
// invocation itself is still forwarded.
func (r *Runner) registerUncacheable(dir string, analysis command.Analysis) {
	release, err := lock.New(dir).Acquire(context.Background())
	if err != nil {
		r.log.Warn().Err(err).Msg("cache busy, call not counted")
		return
	}
	defer release()

	stats := r.loadStatistics(dir)
	switch analysis {
	case command.NoSourceFile:
		stats.RegisterCallWithoutSourceFile()
	case command.MultipleSourceFiles:
		stats.RegisterCallWithMultipleSourceFiles()
	case command.CalledForLink:
		stats.RegisterCallForLinking()
	}
	if err := stats.Save(); err != nil {
		r.log.Warn().Err(err).Msg("statistics not saved")
	}
}

func (r *Runner) loadStatistics(dir string) *persist.Statistics {
	stats := persist.LoadStatistics(dir)
	if stats.Recovered() {
		r.log.Warn().Msg("statistics document was corrupt, counters reset")
	}
	return stats
}

// passthrough forwards the unmodified invocation to the real compiler
// with inherited stdio and mirrors its exit code.
func (r *Runner) passthrough(args []string) int {
	code, err := r.tc.Invoke(args)
	if err != nil {
		r.log.Error().Err(err).Msg("compiler failed to start")
		return 1
	}
	return code
}

func hasContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
