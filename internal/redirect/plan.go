// Package redirect implements the redirection planner: for each of the
// three standard streams it produces a (parent, child) handle pair for
// one of three modes (PIPE, INHERIT, DISCARD).
package redirect

import "github.com/halvorix/procio/internal/handle"

// Mode selects how a stream is wired into the child.
type Mode int

const (
	// Pipe creates a fresh anonymous pipe for the stream.
	Pipe Mode = iota
	// Inherit duplicates the parent's own stream into the child. Falls
	// back to Discard if the parent's stream is itself closed.
	Inherit
	// Discard opens the platform null device.
	Discard
)

// Stream identifies which of the three standard streams a Pair belongs
// to; the stream also determines which end of a Pipe mode becomes the
// parent handle.
type Stream int

const (
	Stdin Stream = iota
	Stdout
	Stderr
)

// Pair is the planner's output for one stream: the handle the parent
// keeps (owned only under Pipe mode; Null otherwise) and the handle
// that is installed into the child (owned transiently by the spawner,
// released on every exit path after process creation).
type Pair struct {
	Parent handle.Handle
	Child  handle.Handle
}

// Plan is the full set of (parent, child) pairs for stdin/stdout/stderr,
// in that order.
type Plan struct {
	Stdin  Pair
	Stdout Pair
	Stderr Pair
}

// NewPlan returns a Plan whose six handles are all the null sentinel.
// The zero value is not equivalent: a zero Handle wraps descriptor 0 on
// POSIX, so releasing an unassigned zero-value pair would close the
// parent's stdin.
func NewPlan() Plan {
	null := Pair{Parent: handle.Null, Child: handle.Null}
	return Plan{Stdin: null, Stdout: null, Stderr: null}
}

// Release releases every handle the Plan still owns (parent handles that
// were never picked up by a façade, and any child handle a failed spawn
// never closed). Safe to call multiple times.
func (p *Plan) Release() {
	p.Stdin.Parent.Release()
	p.Stdin.Child.Release()
	p.Stdout.Parent.Release()
	p.Stdout.Child.Release()
	p.Stderr.Parent.Release()
	p.Stderr.Child.Release()
}

// ReleaseChildren releases only the three child-side handles. The
// spawner calls this unconditionally after process creation, successful
// or not, since by then the handles have either been duplicated into
// the child's descriptor table (POSIX) or captured by the inherit list
// (Windows) and the parent's copy is no longer needed.
func (p *Plan) ReleaseChildren() {
	p.Stdin.Child.Release()
	p.Stdout.Child.Release()
	p.Stderr.Child.Release()
}
