//go:build unix

package redirect

import (
	"golang.org/x/sys/unix"

	"github.com/halvorix/procio/internal/handle"
	"github.com/halvorix/procio/internal/ioerr"
	"github.com/halvorix/procio/internal/iopipe"
)

// Build plans the three streams given their modes and the parent's own
// stdin/stdout/stderr descriptors (normally 0/1/2, overridable for
// testing). parentFD returning a negative value marks that stream as
// closed, falling an Inherit request back to Discard.
func Build(modes [3]Mode, parentFD func(Stream) int) (Plan, error) {
	plan := NewPlan()
	pairs := [3]*Pair{&plan.Stdin, &plan.Stdout, &plan.Stderr}
	streams := [3]Stream{Stdin, Stdout, Stderr}

	for i, s := range streams {
		pair, err := buildOne(s, modes[i], parentFD)
		if err != nil {
			plan.Release()
			return Plan{}, err
		}
		*pairs[i] = pair
	}
	return plan, nil
}

func buildOne(s Stream, mode Mode, parentFD func(Stream) int) (Pair, error) {
	switch mode {
	case Pipe:
		return redirectPipe(s)
	case Inherit:
		fd := -1
		if parentFD != nil {
			fd = parentFD(s)
		}
		if fd < 0 {
			return redirectDiscard(s)
		}
		return redirectInherit(fd)
	case Discard:
		return redirectDiscard(s)
	default:
		return Pair{}, ioerr.New("redirect plan", ioerr.KindSystem, nil)
	}
}

// redirectPipe creates a fresh pipe; the parent keeps the "outward" end
// (write for stdin, read for stdout/stderr) and the child gets the
// other end.
func redirectPipe(s Stream) (Pair, error) {
	p, err := iopipe.Create()
	if err != nil {
		return Pair{}, err
	}
	if s == Stdin {
		return Pair{Parent: p.Write, Child: p.Read}, nil
	}
	return Pair{Parent: p.Read, Child: p.Write}, nil
}

// redirectInherit duplicates the parent's fd via F_DUPFD_CLOEXEC so the
// copy survives until the spawner explicitly clears close-on-exec on the
// descriptor it dup2's onto 0/1/2 in the child.
func redirectInherit(fd int) (Pair, error) {
	newFD, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return Pair{}, ioerr.New("redirect inherit", ioerr.KindFromErrno(err.(unix.Errno)), err)
	}
	return Pair{Parent: handle.Null, Child: handle.FromFD(newFD)}, nil
}

// redirectDiscard opens /dev/null in the direction appropriate for s.
func redirectDiscard(s Stream) (Pair, error) {
	flags := unix.O_WRONLY
	if s == Stdin {
		flags = unix.O_RDONLY
	}
	fd, err := unix.Open("/dev/null", flags|unix.O_CLOEXEC, 0)
	if err != nil {
		return Pair{}, ioerr.New("redirect discard", ioerr.KindFromErrno(err.(unix.Errno)), err)
	}
	return Pair{Parent: handle.Null, Child: handle.FromFD(fd)}, nil
}
