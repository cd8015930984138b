//go:build windows

package procio

import (
	"time"

	"golang.org/x/sys/windows"

	"github.com/halvorix/procio/internal/handle"
	"github.com/halvorix/procio/internal/redirect"
	"github.com/halvorix/procio/internal/spawn"
	"github.com/halvorix/procio/internal/waitctl"
)

// platformState on Windows additionally owns the process handle, since
// WaitForSingleObject/TerminateProcess need it (a pid alone does not
// suffice the way POSIX's waitpid does).
type platformState struct {
	pid     uint32
	process handle.Handle
}

func (p *Process) pid() int {
	return int(p.platform.pid)
}

func (p *Process) start(argv []string) error {
	modes := [3]redirect.Mode{
		p.opts.redirects[0].toInternal(),
		p.opts.redirects[1].toInternal(),
		p.opts.redirects[2].toInternal(),
	}

	plan, err := redirect.Build(modes, parentHandle)
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
	p.platform.process = handle.FromWindowsHandle(res.Process)
	p.stdin = plan.Stdin.Parent
	p.stdout = plan.Stdout.Parent
	p.stderr = plan.Stderr.Parent
	return nil
}

// resolveEnv returns nil for the inherit case: a NULL environment block
// passed to CreateProcess means inherit the parent's, so no explicit
// materialization is needed here.
func (p *Process) resolveEnv() []string {
	if p.opts.envInherit {
		return nil
	}
	return p.opts.env
}

func parentHandle(s redirect.Stream) windows.Handle {
	switch s {
	case redirect.Stdin:
		h, _ := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
		return h
	case redirect.Stdout:
		h, _ := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
		return h
	case redirect.Stderr:
		h, _ := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
		return h
	default:
		return windows.InvalidHandle
	}
}

func (p *Process) primitiveWait(timeout time.Duration) (int, error) {
	return waitctl.Wait(p.platform.process.WindowsHandle(), timeout)
}

func (p *Process) primitiveTerminate() error {
	return waitctl.Terminate(p.platform.pid)
}

func (p *Process) primitiveKill() error {
	return waitctl.Kill(p.platform.process.WindowsHandle())
}

func (p *Process) destroyPlatform() {
	p.platform.process.Release()
}
