//go:build unix

// Package spawn implements the process spawner. The POSIX flavor is
// built on syscall.StartProcess, which already performs the error-pipe/
// fork/dup2/close-fds dance in the child; re-implementing raw fork() in
// a goroutine-scheduled, multithreaded runtime is unsafe, so the
// runtime's own primitive is adopted instead.
package spawn

import (
	"errors"
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/halvorix/procio/internal/ioerr"
	"github.com/halvorix/procio/internal/redirect"
)

// Result is the spawner's output: the child's pid. POSIX has no
// separate process handle; a subsequent wait(2) on the pid harvests the
// zombie.
type Result struct {
	PID int
}

// Start forks and execs argv[0] with argv as its argument vector, wiring
// plan's three child-side handles onto descriptors 0/1/2, optionally
// changing directory to dir (ignored if empty). env is handed to the OS
// verbatim as the child's complete environment; callers wanting the
// parent's environment must materialize it themselves, since a nil env
// means an empty environment at this layer. The child is placed in its
// own process group (setpgid(0,0)) so a group-scoped signal can later
// target it without also hitting the parent.
//
// plan's child-side handles are released unconditionally before Start
// returns, whether or not the spawn succeeded: syscall.StartProcess dup2's
// them onto 0/1/2 in the child, so the parent's copies are no longer
// needed either way.
func Start(argv []string, dir string, env []string, plan *redirect.Plan) (Result, error) {
	defer plan.ReleaseChildren()

	if len(argv) == 0 {
		return Result{}, ioerr.New("spawn", ioerr.KindSystem, nil)
	}

	path, err := lookPath(argv[0])
	if err != nil {
		return Result{}, err
	}

	attr := &syscall.ProcAttr{
		Dir: dir,
		Env: env,
		Files: []uintptr{
			uintptr(plan.Stdin.Child.FD()),
			uintptr(plan.Stdout.Child.FD()),
			uintptr(plan.Stderr.Child.FD()),
		},
		Sys: &syscall.SysProcAttr{
			Setpgid: true,
		},
	}

	pid, _, errno := syscall.StartProcess(path, argv, attr)
	if errno != nil {
		se, _ := errno.(syscall.Errno)
		return Result{}, ioerr.New("spawn", ioerr.KindFromErrno(se), errno)
	}
	return Result{PID: pid}, nil
}

// lookPath resolves argv[0] the way execvp would, surfacing resolver
// failures up front rather than discovering them only after a forked
// child reports back, mirroring the fast path most execvp
// implementations take (stat before exec, not just on failure).
func lookPath(file string) (string, error) {
	p, err := lookPathOS(file)
	if err != nil {
		return "", ioerr.New("spawn lookup", classifyLookup(err), err)
	}
	return p, nil
}

// classifyLookup preserves the resolver's real failure: an errno in the
// chain (EACCES, ELOOP, ENAMETOOLONG, ...) keeps its taxonomy mapping,
// and a candidate rejected for missing execute permission reports
// permission denied, not file-not-found. Only a genuine miss (nothing
// on PATH matched) falls through to KindFileNotFound.
func classifyLookup(err error) ioerr.Kind {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return ioerr.KindFromErrno(errno)
	}
	if errors.Is(err, fs.ErrPermission) {
		return ioerr.KindPermissionDenied
	}
	return ioerr.KindFileNotFound
}
