// Package errors provides the structured error codes used by the clcache core.
package errors

import "fmt"

// Code identifies a class of cache failure.
type Code string

const (
	// CodeCompilerNotFound is returned when no compiler binary could be
	// located via CLCACHE_CL or the search path.
	CodeCompilerNotFound Code = "COMPILER_NOT_FOUND"

	// CodePreprocessorFailed is returned when the preprocess-only
	// invocation used for key derivation could not run or exited
	// abnormally. The invocation is not cacheable in that case.
	CodePreprocessorFailed Code = "PREPROCESSOR_FAILED"

	// CodeEntryNotFound is returned by fetches for keys that have no
	// stored entry. Callers treat it as a cache miss.
	CodeEntryNotFound Code = "ENTRY_NOT_FOUND"

	// CodeLockTimeout is returned when the cross-process cache lock
	// could not be acquired within its timeout.
	CodeLockTimeout Code = "LOCK_TIMEOUT"

	// CodeCorruptStore marks a persistent document that failed to load
	// and was reset to its defaults. It is recovered locally and traced,
	// never surfaced to the build.
	CodeCorruptStore Code = "CORRUPT_STORE"

	// CodeStoreIO is returned for filesystem failures while reading or
	// writing cache entries.
	CodeStoreIO Code = "STORE_IO"
)

// Error is a cache error with a stable code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code, so sentinel comparison with errors.Is works
// across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// New creates an error with the given code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new error with the given code.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	for err != nil {
		if ce, ok := err.(*Error); ok && ce.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
