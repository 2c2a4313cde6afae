// Package compiler locates the real compiler binary and runs it, both
// as a passthrough and with captured output.
package compiler

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	cerrors "github.com/jonastr/clcache/pkg/errors"
)

// BinaryName is the executable the cache fronts.
const BinaryName = "cl.exe"

// Find resolves the compiler binary. An explicit override must point at
// an existing file; otherwise every directory on the search path is
// scanned for BinaryName.
func Find(override string) (string, error) {
	if override != "" {
		if fileExists(override) {
			return override, nil
		}
		return "", cerrors.Newf(cerrors.CodeCompilerNotFound,
			"CLCACHE_CL points at %s, which does not exist", override)
	}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, BinaryName)
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", cerrors.Newf(cerrors.CodeCompilerNotFound,
		"%s not found on the search path", BinaryName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Real invokes an actual compiler binary.
type Real struct {
	Path string
}

// Invoke runs the compiler with the caller's stdio attached and returns
// its exit code.
func (r *Real) Invoke(args []string) (int, error) {
	cmd := exec.Command(r.Path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return runExitCode(cmd)
}

// InvokeCaptured runs the compiler with stdout and stderr captured into
// one stream, in the order the compiler produced them.
func (r *Real) InvokeCaptured(args []string) (int, []byte, error) {
	var buf bytes.Buffer
	cmd := exec.Command(r.Path, args...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	code, err := runExitCode(cmd)
	return code, buf.Bytes(), err
}

// Preprocess runs the preprocess-only variant of cmdline (the leading
// token is the program name): the compile-only switch is dropped and
// /EP added, stdout is captured raw, stderr is discarded. A
// preprocessor that cannot run or exits non-zero makes the invocation
// uncacheable.
func (r *Real) Preprocess(cmdline []string) ([]byte, error) {
	args := []string{"/EP"}
	for _, arg := range rest(cmdline) {
		if arg == "/c" || arg == "-c" {
			continue
		}
		args = append(args, arg)
	}

	var out bytes.Buffer
	cmd := exec.Command(r.Path, args...)
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return nil, cerrors.Wrap(cerrors.CodePreprocessorFailed, "preprocess-only invocation", err)
	}
	return out.Bytes(), nil
}

func rest(cmdline []string) []string {
	if len(cmdline) == 0 {
		return nil
	}
	return cmdline[1:]
}

// runExitCode runs cmd and maps a non-zero exit into its code rather
// than an error; only failures to start are errors.
func runExitCode(cmd *exec.Cmd) (int, error) {
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
