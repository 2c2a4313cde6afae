// Package command handles the compiler command line: response-file
// expansion and the classification of an invocation as a cacheable
// single-source compile.
package command

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// maxResponseDepth bounds nested response files. The limit exists to
// stop a self-referencing response file from recursing forever.
const maxResponseDepth = 10

// Expand splices response files (tokens beginning with '@') into the
// command line, recursively. Response files are decoded as UTF-16,
// little-endian unless a BOM says otherwise, matching what cl.exe
// writes for its own response files.
func Expand(cmdline []string) ([]string, error) {
	return expand(cmdline, 0)
}

func expand(cmdline []string, depth int) ([]string, error) {
	if depth > maxResponseDepth {
		return nil, fmt.Errorf("response files nested deeper than %d levels", maxResponseDepth)
	}

	out := make([]string, 0, len(cmdline))
	for _, arg := range cmdline {
		if !strings.HasPrefix(arg, "@") {
			out = append(out, arg)
			continue
		}
		tokens, err := readResponseFile(arg[1:])
		if err != nil {
			return nil, err
		}
		nested, err := expand(tokens, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

func readResponseFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read response file %s: %w", path, err)
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	text, err := dec.Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode response file %s: %w", path, err)
	}
	return strings.Fields(string(text)), nil
}
