//go:build windows

package handle

import "golang.org/x/sys/windows"

// Handle is an owning wrapper around a Windows HANDLE.
type Handle struct {
	h windows.Handle
}

// Null is the "not owned" sentinel, mirroring INVALID_HANDLE_VALUE.
var Null = Handle{h: windows.InvalidHandle}

// FromWindowsHandle wraps an already-open, owned HANDLE.
func FromWindowsHandle(h windows.Handle) Handle {
	return Handle{h: h}
}

// WindowsHandle returns the underlying HANDLE, or INVALID_HANDLE_VALUE if
// this Handle is Null.
func (h Handle) WindowsHandle() windows.Handle {
	return h.h
}

// Valid reports whether h owns a real HANDLE.
func (h Handle) Valid() bool {
	return h.h != windows.InvalidHandle && h.h != 0
}

// Release closes the underlying HANDLE exactly once. A Null handle is a
// no-op.
func (h *Handle) Release() {
	if h == nil || !h.Valid() {
		return
	}
	wh := h.h
	h.h = windows.InvalidHandle
	_ = windows.CloseHandle(wh)
}
