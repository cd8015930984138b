package procio

import "github.com/halvorix/procio/internal/ioerr"

// Kind classifies an Error.
type Kind = ioerr.Kind

const (
	KindWaitTimeout         = ioerr.KindWaitTimeout
	KindStreamClosed        = ioerr.KindStreamClosed
	KindPartialWrite        = ioerr.KindPartialWrite
	KindInterrupted         = ioerr.KindInterrupted
	KindPipeLimitReached    = ioerr.KindPipeLimitReached
	KindProcessLimitReached = ioerr.KindProcessLimitReached
	KindNotEnoughMemory     = ioerr.KindNotEnoughMemory
	KindInvalidUnicode      = ioerr.KindInvalidUnicode
	KindPermissionDenied    = ioerr.KindPermissionDenied
	KindSymlinkLoop         = ioerr.KindSymlinkLoop
	KindFileNotFound        = ioerr.KindFileNotFound
	KindNameTooLong         = ioerr.KindNameTooLong
	KindArgsTooLong         = ioerr.KindArgsTooLong
	KindNotExecutable       = ioerr.KindNotExecutable
	KindSystem              = ioerr.KindSystem
)

// Error is the concrete error type every operation returns. Op names the
// failing operation; Kind classifies it; Err, when non-nil, wraps the
// underlying OS error.
type Error = ioerr.Error

// Sentinel errors, usable with errors.Is(err, procio.ErrStreamClosed)
// for callers who match on one kind rather than switching over the
// whole taxonomy.
var (
	ErrWaitTimeout         = ioerr.Sentinel(ioerr.KindWaitTimeout)
	ErrStreamClosed        = ioerr.Sentinel(ioerr.KindStreamClosed)
	ErrPartialWrite        = ioerr.Sentinel(ioerr.KindPartialWrite)
	ErrInterrupted         = ioerr.Sentinel(ioerr.KindInterrupted)
	ErrPipeLimitReached    = ioerr.Sentinel(ioerr.KindPipeLimitReached)
	ErrProcessLimitReached = ioerr.Sentinel(ioerr.KindProcessLimitReached)
	ErrNotEnoughMemory     = ioerr.Sentinel(ioerr.KindNotEnoughMemory)
	ErrInvalidUnicode      = ioerr.Sentinel(ioerr.KindInvalidUnicode)
	ErrPermissionDenied    = ioerr.Sentinel(ioerr.KindPermissionDenied)
	ErrSymlinkLoop         = ioerr.Sentinel(ioerr.KindSymlinkLoop)
	ErrFileNotFound        = ioerr.Sentinel(ioerr.KindFileNotFound)
	ErrNameTooLong         = ioerr.Sentinel(ioerr.KindNameTooLong)
	ErrArgsTooLong         = ioerr.Sentinel(ioerr.KindArgsTooLong)
	ErrNotExecutable       = ioerr.Sentinel(ioerr.KindNotExecutable)
	ErrSystem              = ioerr.Sentinel(ioerr.KindSystem)
)
