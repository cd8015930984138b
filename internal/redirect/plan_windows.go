//go:build windows

package redirect

import (
	"golang.org/x/sys/windows"

	"github.com/halvorix/procio/internal/handle"
	"github.com/halvorix/procio/internal/ioerr"
	"github.com/halvorix/procio/internal/iopipe"
)

// Build plans the three streams given their modes and the parent's own
// stdin/stdout/stderr handles. parentHandle(s) returning Null means the
// stream should be treated as closed, falling an Inherit request back
// to Discard.
func Build(modes [3]Mode, parentHandle func(Stream) windows.Handle) (Plan, error) {
	plan := NewPlan()
	pairs := [3]*Pair{&plan.Stdin, &plan.Stdout, &plan.Stderr}
	streams := [3]Stream{Stdin, Stdout, Stderr}

	for i, s := range streams {
		pair, err := buildOne(s, modes[i], parentHandle)
		if err != nil {
			plan.Release()
			return Plan{}, err
		}
		*pairs[i] = pair
	}
	return plan, nil
}

func buildOne(s Stream, mode Mode, parentHandle func(Stream) windows.Handle) (Pair, error) {
	switch mode {
	case Pipe:
		return redirectPipe(s)
	case Inherit:
		var h windows.Handle = windows.InvalidHandle
		if parentHandle != nil {
			h = parentHandle(s)
		}
		if h == windows.InvalidHandle || h == 0 {
			return redirectDiscard(s)
		}
		return redirectInherit(h)
	case Discard:
		return redirectDiscard(s)
	default:
		return Pair{}, ioerr.New("redirect plan", ioerr.KindSystem, nil)
	}
}

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

// redirectInherit duplicates the parent's handle into one explicitly
// marked inheritable; the spawner adds it to the PROC_THREAD_ATTRIBUTE_
// HANDLE_LIST rather than relying on a process-wide inheritance flag.
func redirectInherit(h windows.Handle) (Pair, error) {
	proc, err := windows.GetCurrentProcess()
	if err != nil {
		return Pair{}, classifyCreate(err)
	}
	var dup windows.Handle
	err = windows.DuplicateHandle(proc, h, proc, &dup, 0, true, windows.DUPLICATE_SAME_ACCESS)
	if err != nil {
		return Pair{}, classifyCreate(err)
	}
	return Pair{Parent: handle.Null, Child: handle.FromWindowsHandle(dup)}, nil
}

// redirectDiscard opens the NUL device in the direction appropriate for
// s, with an inheritable security attribute so it survives into the
// child via the explicit handle list.
func redirectDiscard(s Stream) (Pair, error) {
	access := uint32(windows.GENERIC_WRITE)
	if s == Stdin {
		access = windows.GENERIC_READ
	}
	sa := &windows.SecurityAttributes{InheritHandle: 1}
	h, err := windows.CreateFile(
		windows.StringToUTF16Ptr(`NUL`),
		access, 0, sa, windows.OPEN_EXISTING, 0, 0,
	)
	if err != nil {
		return Pair{}, classifyCreate(err)
	}
	return Pair{Parent: handle.Null, Child: handle.FromWindowsHandle(h)}, nil
}

func classifyCreate(err error) error {
	errno, ok := err.(windows.Errno)
	if !ok {
		return ioerr.New("redirect", ioerr.KindSystem, err)
	}
	return ioerr.New("redirect", ioerr.KindFromWindowsError(errno), errno)
}
