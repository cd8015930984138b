//go:build unix

package procio

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/halvorix/procio/internal/redirect"
	"github.com/halvorix/procio/internal/spawn"
	"github.com/halvorix/procio/internal/waitctl"
)

// platformState on POSIX is just the child's pid; a subsequent waitpid
// harvests the zombie, so no separate process handle is needed.
type platformState struct {
	pid int
}

func (p *Process) pid() int {
	return p.platform.pid
}

func (p *Process) start(argv []string) error {
	modes := [3]redirect.Mode{
		p.opts.redirects[0].toInternal(),
		p.opts.redirects[1].toInternal(),
		p.opts.redirects[2].toInternal(),
	}

	plan, err := redirect.Build(modes, parentFD)
	if err != nil {
		return err
	}

	env := p.resolveEnv()

	res, err := spawn.Start(argv, p.opts.dir, env, &plan)
	if err != nil {
		plan.Release()
		return err
	}

	p.platform.pid = res.PID
	p.stdin = plan.Stdin.Parent
	p.stdout = plan.Stdout.Parent
	p.stderr = plan.Stderr.Parent
	return nil
}

// resolveEnv materializes the inherited environment explicitly: the env
// slice is handed to the OS verbatim at the raw syscall layer, where a
// nil envp means an empty environment, not the parent's.
func (p *Process) resolveEnv() []string {
	if p.opts.envInherit {
		return os.Environ()
	}
	return p.opts.env
}

// parentFD resolves the parent's own descriptor for s, probing that it
// is actually open: a daemonized parent can legitimately run with fd
// 0/1/2 closed, and a closed stream must fall back to the null device
// rather than fail the spawn.
func parentFD(s redirect.Stream) int {
	var fd int
	switch s {
	case redirect.Stdin:
		fd = 0
	case redirect.Stdout:
		fd = 1
	case redirect.Stderr:
		fd = 2
	default:
		return -1
	}
	return probeFD(fd)
}

// probeFD reports fd if it refers to an open descriptor, -1 otherwise.
func probeFD(fd int) int {
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0); err != nil {
		return -1
	}
	return fd
}

func (p *Process) primitiveWait(timeout time.Duration) (int, error) {
	return waitctl.Wait(p.platform.pid, timeout)
}

func (p *Process) primitiveTerminate() error {
	return waitctl.Terminate(p.platform.pid)
}

func (p *Process) primitiveKill() error {
	return waitctl.Kill(p.platform.pid)
}

func (p *Process) destroyPlatform() {
	// No extra platform handle to release on POSIX beyond the pipes
	// already released in Destroy; the pid itself is not a resource.
}
