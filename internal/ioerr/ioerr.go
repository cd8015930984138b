// Package ioerr defines the error taxonomy shared by every layer of the
// process-lifecycle engine (handle, iopipe, redirect, spawn, waitctl) and
// re-exported by the root procio package. Keeping it in its own package
// (rather than the root package) lets every internal layer return a
// classified error without importing procio and creating a cycle.
package ioerr

// Kind classifies a failure.
type Kind int

const (
	// KindNone indicates no error; zero value, never set on a real Error.
	KindNone Kind = iota
	KindWaitTimeout
	KindStreamClosed
	KindPartialWrite
	KindInterrupted
	KindPipeLimitReached
	KindProcessLimitReached
	KindNotEnoughMemory
	KindInvalidUnicode
	KindPermissionDenied
	KindSymlinkLoop
	KindFileNotFound
	KindNameTooLong
	KindArgsTooLong
	KindNotExecutable
	KindSystem
)

func (k Kind) String() string {
	switch k {
	case KindWaitTimeout:
		return "wait timeout"
	case KindStreamClosed:
		return "stream closed"
	case KindPartialWrite:
		return "partial write"
	case KindInterrupted:
		return "interrupted"
	case KindPipeLimitReached:
		return "pipe limit reached"
	case KindProcessLimitReached:
		return "process limit reached"
	case KindNotEnoughMemory:
		return "not enough memory"
	case KindInvalidUnicode:
		return "invalid unicode"
	case KindPermissionDenied:
		return "permission denied"
	case KindSymlinkLoop:
		return "symlink loop"
	case KindFileNotFound:
		return "file not found"
	case KindNameTooLong:
		return "name too long"
	case KindArgsTooLong:
		return "argument list too long"
	case KindNotExecutable:
		return "not executable"
	case KindSystem:
		return "system error"
	default:
		return "no error"
	}
}

// Error is the concrete error type every layer returns. Op names the
// failing operation ("start", "read", "write", "wait", ...); Kind gives
// the classified taxonomy entry; Err, when non-nil, is the underlying OS
// error (a syscall.Errno on POSIX, a *windows.Errno-compatible value on
// Windows).
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error. Err may be nil when the kind itself is the whole
// story (e.g. KindWaitTimeout, KindStreamClosed).
func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Is makes two *Error values compare equal on Kind alone, so callers
// can errors.Is against a kind-only sentinel without caring which
// operation produced the failure.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	if other.Kind == KindNone {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel returns a bare *Error carrying only a Kind, suitable for use
// with errors.Is(err, ioerr.Sentinel(ioerr.KindStreamClosed)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
