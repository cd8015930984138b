//go:build windows

package iopipe

import (
	"golang.org/x/sys/windows"

	"github.com/halvorix/procio/internal/handle"
	"github.com/halvorix/procio/internal/ioerr"
)

// Pipe is a single anonymous pipe: a read end and a write end, both
// created non-inheritable by default.
type Pipe struct {
	Read  handle.Handle
	Write handle.Handle
}

// Create returns a fresh anonymous pipe with both ends non-inheritable.
// The spawner marks the one end that must cross into the child as
// inheritable just before CreateProcess and names it in the explicit
// handle list (see internal/spawn), so no other inheritable handle of
// the parent reaches the child.
func Create() (Pipe, error) {
	sa := &windows.SecurityAttributes{InheritHandle: 0}
	var r, w windows.Handle
	if err := windows.CreatePipe(&r, &w, sa, 0); err != nil {
		return Pipe{}, classify("pipe create", err)
	}
	return Pipe{Read: handle.FromWindowsHandle(r), Write: handle.FromWindowsHandle(w)}, nil
}

func Read(end handle.Handle, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var n uint32
	err := windows.ReadFile(end.WindowsHandle(), buf, &n, nil)
	if err != nil {
		if err == windows.ERROR_BROKEN_PIPE {
			return 0, ioerr.New("pipe read", ioerr.KindStreamClosed, nil)
		}
		return 0, classify("pipe read", err)
	}
	if n == 0 {
		return 0, ioerr.New("pipe read", ioerr.KindStreamClosed, nil)
	}
	return int(n), nil
}

func Write(end handle.Handle, buf []byte) (int, error) {
	var n uint32
	err := windows.WriteFile(end.WindowsHandle(), buf, &n, nil)
	if err != nil {
		if err == windows.ERROR_BROKEN_PIPE || err == windows.ERROR_NO_DATA {
			return int(n), ioerr.New("pipe write", ioerr.KindStreamClosed, nil)
		}
		return int(n), classify("pipe write", err)
	}
	if int(n) < len(buf) {
		return int(n), ioerr.New("pipe write", ioerr.KindPartialWrite, nil)
	}
	return int(n), nil
}

// End identifies which of the two multiplexed ends became ready.
type End int

const (
	EndOut End = iota
	EndErr
)

// Wait blocks until one of outEnd/errEnd is readable or closed, using
// PeekNamedPipe polling since Windows anonymous pipes have no native
// multi-handle wait. Mirrors the skip-closed-ends contract of the POSIX
// implementation.
func Wait(outEnd, errEnd handle.Handle, outClosed, errClosed bool) (End, error) {
	if outClosed && errClosed {
		return 0, ioerr.New("pipe wait", ioerr.KindStreamClosed, nil)
	}
	for {
		if !outClosed {
			if ready, closed := peek(outEnd); ready {
				return EndOut, nil
			} else if closed {
				return EndOut, nil
			}
		}
		if !errClosed {
			if ready, closed := peek(errEnd); ready {
				return EndErr, nil
			} else if closed {
				return EndErr, nil
			}
		}
		windows.SleepEx(1, false)
	}
}

func peek(h handle.Handle) (ready bool, closed bool) {
	var avail uint32
	err := windows.PeekNamedPipe(h.WindowsHandle(), nil, 0, nil, &avail, nil)
	if err != nil {
		return false, true
	}
	return avail > 0, false
}

func classify(op string, err error) error {
	errno, ok := err.(windows.Errno)
	if !ok {
		return ioerr.New(op, ioerr.KindSystem, err)
	}
	return ioerr.New(op, ioerr.KindFromWindowsError(errno), errno)
}
