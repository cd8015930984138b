//go:build unix

package waitctl

import (
	"golang.org/x/sys/unix"

	"github.com/halvorix/procio/internal/ioerr"
)

// Terminate sends SIGTERM to the process group led by pid (negative pid
// targets the group), the graceful half of the terminate/kill pair.
// The spawner placed the child in its own process group
// (setpgid(0,0)) specifically so this group-scoped signal reaches it and
// any of its own children without also hitting the parent.
func Terminate(pid int) error {
	if err := unix.Kill(-pid, unix.SIGTERM); err != nil {
		return ioerr.New("terminate", ioerr.KindFromErrno(err.(unix.Errno)), err)
	}
	return nil
}

// Kill sends SIGKILL to the process group led by pid.
func Kill(pid int) error {
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		return ioerr.New("kill", ioerr.KindFromErrno(err.(unix.Errno)), err)
	}
	return nil
}
