package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strconv"
	"strings"

	cerrors "github.com/jonastr/clcache/pkg/errors"
)

// Preprocessor produces the raw preprocessed source for an expanded
// command line (leading token is the program name). It runs the real
// preprocessor; tests substitute a pure function.
type Preprocessor func(cmdline []string) ([]byte, error)

// strippedSwitchPrefixes lists switch-name prefixes removed during key
// normalization. These switches only steer the preprocessor, whose
// output is hashed in full anyway, so keying on them would cause
// spurious misses. /Fo is stripped too: invocations differing only in
// their destination must share an entry.
var strippedSwitchPrefixes = []string{
	"AI", "C", "E", "P", "FI", "u", "X", "FU", "D", "EP", "Fx", "U", "I",
	"Fo",
}

// NormalizeCommandLine removes preprocessor-only and output-path
// switches from the argument list (without the program token). Removal
// never reorders the remaining switches.
func NormalizeCommandLine(args []string) []string {
	normalized := make([]string, 0, len(args))
	for _, arg := range args {
		if isSwitch(arg) && hasStrippedPrefix(arg[1:]) {
			continue
		}
		normalized = append(normalized, arg)
	}
	return normalized
}

func isSwitch(arg string) bool {
	return len(arg) > 1 && (arg[0] == '/' || arg[0] == '-')
}

func hasStrippedPrefix(name string) bool {
	for _, prefix := range strippedSwitchPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// DeriveKey computes the cache key for one compilation: a SHA-1 over
// the compiler binary's mtime and size, the normalized command line,
// and the preprocessed source bytes. A failing preprocessor makes the
// invocation uncacheable, not the whole process.
func DeriveKey(compilerPath string, cmdline []string, preprocess Preprocessor) (string, error) {
	preprocessed, err := preprocess(cmdline)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(compilerPath)
	if err != nil {
		return "", cerrors.Wrap(cerrors.CodeStoreIO, "stat compiler binary", err)
	}

	var args []string
	if len(cmdline) > 0 {
		args = cmdline[1:]
	}
	normalized := NormalizeCommandLine(args)

	h := sha1.New()
	_, _ = io.WriteString(h, strconv.FormatInt(info.ModTime().UnixNano(), 10))
	_, _ = io.WriteString(h, strconv.FormatInt(info.Size(), 10))
	_, _ = io.WriteString(h, strings.Join(normalized, " "))
	_, _ = h.Write(preprocessed)
	return hex.EncodeToString(h.Sum(nil)), nil
}
