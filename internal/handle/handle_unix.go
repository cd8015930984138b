//go:build unix

// Package handle wraps a platform descriptor with exactly-once release
// semantics.
package handle

import "golang.org/x/sys/unix"

// Handle is an owning wrapper around a POSIX file descriptor.
type Handle struct {
	fd int
}

// Null is the "not owned" sentinel. The zero value of Handle is NOT the
// null sentinel on POSIX since fd 0 is stdin; use Null explicitly.
var Null = Handle{fd: -1}

// FromFD wraps an already-open, owned file descriptor.
func FromFD(fd int) Handle {
	return Handle{fd: fd}
}

// FD returns the underlying descriptor, or -1 if this Handle is Null.
func (h Handle) FD() int {
	return h.fd
}

// Valid reports whether h owns a real descriptor.
func (h Handle) Valid() bool {
	return h.fd >= 0
}

// Release closes the underlying descriptor exactly once. A Null handle
// is a no-op. A close failure is discarded, so it never replaces the
// error the caller is about to report for the operation that actually
// failed.
func (h *Handle) Release() {
	if h == nil || h.fd < 0 {
		return
	}
	fd := h.fd
	h.fd = -1

	_ = unix.Close(fd) // a close failure on an fd we owned is not actionable here
}
