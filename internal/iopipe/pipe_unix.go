//go:build unix

// Package iopipe implements the anonymous pipe layer: creation with
// close-on-exec set on both ends, blocking read/write, and a two-end
// multiplex wait.
package iopipe

import (
	"golang.org/x/sys/unix"

	"github.com/halvorix/procio/internal/handle"
	"github.com/halvorix/procio/internal/ioerr"
)

// Pipe is a single anonymous pipe: a read end and a write end, both
// created non-inheritable (close-on-exec).
type Pipe struct {
	Read  handle.Handle
	Write handle.Handle
}

// Create returns a fresh anonymous pipe. Both ends carry O_CLOEXEC so
// neither is inherited by a child process unless the spawner explicitly
// re-enables inheritance on the end that must cross the fork/exec
// boundary (see internal/redirect).
func Create() (Pipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return Pipe{}, classify("pipe create", err)
	}
	return Pipe{Read: handle.FromFD(fds[0]), Write: handle.FromFD(fds[1])}, nil
}

// Read blocks until at least one byte is available, the peer's write end
// closes (STREAM_CLOSED), or the call is interrupted (INTERRUPTED). A
// successful return never reports zero bytes; zero bytes is always
// surfaced as STREAM_CLOSED, never a silent success. The one exception
// is a zero-capacity buffer, which is a legal no-op transfer.
func Read(end handle.Handle, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := unix.Read(end.FD(), buf)
	if err != nil {
		return 0, classify("pipe read", err)
	}
	if n == 0 {
		return 0, ioerr.New("pipe read", ioerr.KindStreamClosed, nil)
	}
	return n, nil
}

// Write blocks until the full buffer is written, the peer's read end
// closes (STREAM_CLOSED), or the call is interrupted (INTERRUPTED). A
// short write with no other error is reported as PARTIAL_WRITE; the
// caller is expected to retry with the unwritten remainder.
func Write(end handle.Handle, buf []byte) (int, error) {
	n, err := unix.Write(end.FD(), buf)
	if err != nil {
		if err == unix.EPIPE {
			return n, ioerr.New("pipe write", ioerr.KindStreamClosed, nil)
		}
		return n, classify("pipe write", err)
	}
	if n < len(buf) {
		return n, ioerr.New("pipe write", ioerr.KindPartialWrite, nil)
	}
	return n, nil
}

// End identifies which of the two multiplexed ends became ready.
type End int

const (
	EndOut End = iota
	EndErr
)

// Wait blocks until one of outEnd/errEnd is readable or closed, and
// reports which. Ends that have already been marked closed via
// outClosed/errClosed are skipped entirely rather than re-polled, so
// whichever stream remains open keeps being served once its sibling has
// closed. Wait fails STREAM_CLOSED only when both ends are closed.
func Wait(outEnd, errEnd handle.Handle, outClosed, errClosed bool) (End, error) {
	if outClosed && errClosed {
		return 0, ioerr.New("pipe wait", ioerr.KindStreamClosed, nil)
	}

	var fds []unix.PollFd
	var indexOf []End
	if !outClosed {
		fds = append(fds, unix.PollFd{Fd: int32(outEnd.FD()), Events: unix.POLLIN})
		indexOf = append(indexOf, EndOut)
	}
	if !errClosed {
		fds = append(fds, unix.PollFd{Fd: int32(errEnd.FD()), Events: unix.POLLIN})
		indexOf = append(indexOf, EndErr)
	}

	for {
		n, err := unix.Poll(fds, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, classify("pipe wait", err)
		}
		if n == 0 {
			continue
		}
		for i, fd := range fds {
			if fd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
				return indexOf[i], nil
			}
		}
	}
}

func classify(op string, err error) error {
	errno, ok := err.(unix.Errno)
	if !ok {
		return ioerr.New(op, ioerr.KindSystem, err)
	}
	if errno == unix.EINTR {
		return ioerr.New(op, ioerr.KindInterrupted, errno)
	}
	return ioerr.New(op, ioerr.KindFromErrno(errno), errno)
}
