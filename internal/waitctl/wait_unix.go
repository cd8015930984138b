//go:build unix

package waitctl

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/halvorix/procio/internal/ioerr"
)

// Wait blocks up to timeout for pid to terminate and returns its exit
// status: the program's exit code on normal exit, or the terminating
// signal number on signal death. A timeout of 0 is a non-blocking
// probe; Infinite blocks forever.
//
// The classic C discipline here (block SIGCHLD, then sigtimedwait with
// the remaining timeout) does not carry over: the Go runtime keeps
// SIGCHLD unblocked with its own handler on every thread, so a
// sigtimedwait on one thread never observes the signal. The timed path
// instead probes waitpid(WNOHANG) on a short adaptive sleep, and the
// infinite path simply blocks in wait4, which needs no wakeup signal
// at all.
func Wait(pid int, timeout time.Duration) (int, error) {
	var ws unix.WaitStatus

	if timeout == Infinite {
		for {
			_, err := unix.Wait4(pid, &ws, 0, nil)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				return 0, ioerr.New("wait", ioerr.KindSystem, err)
			}
			return decodeStatus(ws), nil
		}
	}

	deadline := time.Now().Add(timeout)
	interval := time.Millisecond

	for {
		wpid, err := unix.Wait4(pid, &ws, unix.WNOHANG, nil)
		if err != nil && err != unix.EINTR {
			return 0, ioerr.New("wait", ioerr.KindSystem, err)
		}
		if err == nil && wpid == pid {
			return decodeStatus(ws), nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, ioerr.New("wait", ioerr.KindWaitTimeout, nil)
		}
		if interval > remaining {
			interval = remaining
		}
		time.Sleep(interval)
		if interval < 10*time.Millisecond {
			interval = min(interval*2, 10*time.Millisecond)
		}
	}
}

func decodeStatus(ws unix.WaitStatus) int {
	if ws.Exited() {
		return ws.ExitStatus()
	}
	if ws.Signaled() {
		return int(ws.Signal())
	}
	return 0
}
