// Package trace owns the diagnostic logger behind the CLCACHE_LOG switch.
//
// Tracing goes to stderr so that captured compiler output on stdout is
// never polluted. With CLCACHE_LOG unset the logger is fully disabled.
package trace

import (
	"os"

	"github.com/rs/zerolog"
)

// Setup returns the process logger. Verbose tracing is opt-in; the
// returned logger discards everything otherwise.
func Setup(verbose bool) zerolog.Logger {
	if !verbose {
		return zerolog.New(os.Stderr).Level(zerolog.Disabled)
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).With().Timestamp().Str("tool", "clcache").Logger()
}
