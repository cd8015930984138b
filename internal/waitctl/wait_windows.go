//go:build windows

package waitctl

import (
	"time"

	"golang.org/x/sys/windows"

	"github.com/halvorix/procio/internal/ioerr"
)

// Wait blocks up to timeout on the process handle and harvests the exit
// code via GetExitCodeProcess.
func Wait(h windows.Handle, timeout time.Duration) (int, error) {
	ms := uint32(windows.INFINITE)
	if timeout != Infinite {
		ms = uint32(timeout / time.Millisecond)
	}
	ev, err := windows.WaitForSingleObject(h, ms)
	if err != nil {
		return 0, ioerr.New("wait", ioerr.KindSystem, err)
	}
	switch ev {
	case windows.WAIT_OBJECT_0:
		var code uint32
		if err := windows.GetExitCodeProcess(h, &code); err != nil {
			return 0, ioerr.New("wait", ioerr.KindSystem, err)
		}
		return int(code), nil
	case uint32(windows.WAIT_TIMEOUT):
		return 0, ioerr.New("wait", ioerr.KindWaitTimeout, nil)
	default:
		return 0, ioerr.New("wait", ioerr.KindSystem, nil)
	}
}

// Terminate sends CTRL_BREAK_EVENT to the process group, whose id equals
// the child's own pid since it was created with
// CREATE_NEW_PROCESS_GROUP.
func Terminate(pid uint32) error {
	if err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, pid); err != nil {
		return ioerr.New("terminate", ioerr.KindSystem, err)
	}
	return nil
}

// Kill forcefully terminates the process with exit code 137, for parity
// with POSIX's SIGKILL-as-128+9 convention.
func Kill(h windows.Handle) error {
	const forcedKillExitCode = 137
	if err := windows.TerminateProcess(h, forcedKillExitCode); err != nil {
		return ioerr.New("kill", ioerr.KindSystem, err)
	}
	return nil
}
