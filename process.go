// Package procio spawns and controls child processes with full
// redirection of their standard streams, presenting one contract across
// POSIX and Windows.
package procio

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/halvorix/procio/internal/handle"
	"github.com/halvorix/procio/internal/ioerr"
	"github.com/halvorix/procio/internal/iopipe"
	"github.com/halvorix/procio/internal/waitctl"
)

// Process is the public handle type: it owns the parent-side pipe
// handles, the platform process identity, and a cached exit status.
// A Process is NOT safe for concurrent use from multiple goroutines;
// distinct Process values are independent.
type Process struct {
	mu sync.Mutex

	id  uuid.UUID
	log *zap.Logger

	state  State
	status Status

	stdin  handle.Handle
	stdout handle.Handle
	stderr handle.Handle

	stdoutClosed bool
	stderrClosed bool

	opts options

	platform platformState
}

// New constructs a Process in state NOT_STARTED. Construction itself
// only performs zero-initialization; fallible work happens in Start.
func New(opts ...Option) *Process {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.New()
	return &Process{
		id:     id,
		log:    o.logger.Named("procio").With(zap.String("process_id", id.String())),
		state:  NotStarted,
		stdin:  handle.Null,
		stdout: handle.Null,
		stderr: handle.Null,
		opts:   o,
	}
}

// ID returns the correlation UUID assigned at construction, independent
// of the OS pid (which the kernel can reuse), so log lines from
// concurrently running Process values remain attributable.
func (p *Process) ID() uuid.UUID {
	return p.id
}

// State reports the current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start plans the three redirections and spawns argv[0] with argv as its
// full argument vector (len(argv) must be ≥ 1). On success the Process
// transitions NOT_STARTED → RUNNING; on any failure all partial
// resources are reclaimed before Start returns.
func (p *Process) Start(argv []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != NotStarted {
		return ioerr.New("start", ioerr.KindSystem, nil)
	}
	if len(argv) == 0 {
		return ioerr.New("start", ioerr.KindSystem, nil)
	}

	log := p.log.Named("start")
	log.Debug("starting process", zap.Strings("argv", argv))

	if err := p.start(argv); err != nil {
		log.Error("start failed", zap.Error(err))
		return err
	}

	p.state = Running
	log.Info("process started", zap.Int("pid", p.pid()))
	return nil
}

// Read performs a blocking read on the stream named by sel (Stdout,
// Stderr, or Any). For Any, pipe_wait selects whichever of stdout/stderr
// is ready first, skipping any end that has already reported closure;
// the selector actually serviced is returned alongside the byte count so
// callers can route the bytes to the right buffer.
func (p *Process) Read(sel Selector, buf []byte) (Selector, int, error) {
	// Snapshot the handles under the lock but perform the blocking
	// syscalls outside it, so a concurrent Stop/Terminate (the Run
	// convenience's cancellation path) is never wedged behind a reader
	// parked in the kernel.
	p.mu.Lock()
	if p.state != Running {
		p.mu.Unlock()
		return sel, 0, ioerr.New("read", ioerr.KindSystem, nil)
	}
	stdout, stderr := p.stdout, p.stderr
	outClosed, errClosed := p.stdoutClosed, p.stderrClosed
	p.mu.Unlock()

	switch sel {
	case Stdout:
		n, err := iopipe.Read(stdout, buf)
		p.markClosed(Stdout, err)
		return Stdout, n, err
	case Stderr:
		n, err := iopipe.Read(stderr, buf)
		p.markClosed(Stderr, err)
		return Stderr, n, err
	case Any:
		end, err := iopipe.Wait(stdout, stderr, outClosed, errClosed)
		if err != nil {
			return Any, 0, err
		}
		if end == iopipe.EndOut {
			n, err := iopipe.Read(stdout, buf)
			p.markClosed(Stdout, err)
			return Stdout, n, err
		}
		n, err := iopipe.Read(stderr, buf)
		p.markClosed(Stderr, err)
		return Stderr, n, err
	default:
		return sel, 0, ioerr.New("read", ioerr.KindSystem, nil)
	}
}

func (p *Process) markClosed(sel Selector, err error) {
	if !isKind(err, ioerr.KindStreamClosed) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch sel {
	case Stdout:
		p.stdoutClosed = true
	case Stderr:
		p.stderrClosed = true
	}
}

func isKind(err error, kind ioerr.Kind) bool {
	var ioe *ioerr.Error
	return errors.As(err, &ioe) && ioe.Kind == kind
}

// Write performs a blocking write to the child's stdin. A short write
// with no other error is reported as KindPartialWrite; callers retry
// with buf[n:].
func (p *Process) Write(buf []byte) (int, error) {
	p.mu.Lock()
	if p.state != Running {
		p.mu.Unlock()
		return 0, ioerr.New("write", ioerr.KindSystem, nil)
	}
	stdin := p.stdin
	p.mu.Unlock()

	return iopipe.Write(stdin, buf)
}

// CloseStream releases the parent-side handle for one stream (typically
// Stdin, to signal EOF to the child) without affecting process state.
func (p *Process) CloseStream(sel Selector) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch sel {
	case Stdin:
		p.stdin.Release()
	case Stdout:
		p.stdout.Release()
		p.stdoutClosed = true
	case Stderr:
		p.stderr.Release()
		p.stderrClosed = true
	}
}

// Wait blocks up to timeout for the process to terminate and caches the
// exit status on first success. Once EXITED, further calls are no-ops
// returning the cached status. A zero timeout is a non-blocking probe;
// a negative timeout blocks forever.
func (p *Process) Wait(timeout time.Duration) (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waitLocked(timeout)
}

func (p *Process) waitLocked(timeout time.Duration) (Status, error) {
	if p.state == Exited || p.state == Destroyed {
		return p.status, nil
	}
	if p.state != Running {
		return Status{}, ioerr.New("wait", ioerr.KindSystem, nil)
	}

	code, err := p.primitiveWait(toInternalTimeout(timeout))
	if err != nil {
		return Status{}, err
	}

	p.status = Status{ExitCode: code}
	p.state = Exited
	p.log.Named("wait").Info("process exited", zap.Int("exit_code", code))
	return p.status, nil
}

func toInternalTimeout(d time.Duration) time.Duration {
	if d < 0 {
		return waitctl.Infinite
	}
	return d
}

// Terminate sends the graceful-termination signal (POSIX SIGTERM,
// Windows CTRL_BREAK_EVENT) without waiting for exit.
func (p *Process) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Running {
		return nil
	}
	return p.primitiveTerminate()
}

// Kill sends the forceful-termination primitive (POSIX SIGKILL, Windows
// TerminateProcess with exit code 137) without waiting for exit.
func (p *Process) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Running {
		return nil
	}
	return p.primitiveKill()
}

// Stop runs seq's three-step sequence (see internal/waitctl.Run) and, on
// success, caches the exit status exactly as Wait does.
func (p *Process) Stop(seq [3]StopStep) (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked(toInternalSequence(seq))
}

func toInternalSequence(steps [3]StopStep) waitctl.Sequence {
	var seq waitctl.Sequence
	for i, s := range steps {
		seq[i] = waitctl.Step{Action: s.Action.toInternal(), Timeout: toInternalTimeout(s.Timeout)}
	}
	return seq
}

func (p *Process) stopLocked(seq waitctl.Sequence) (Status, error) {
	if p.state == Exited || p.state == Destroyed {
		return p.status, nil
	}
	if p.state != Running {
		return Status{}, ioerr.New("stop", ioerr.KindSystem, nil)
	}

	ops := waitctl.Ops{
		Wait:      func(t time.Duration) (int, error) { return p.primitiveWait(t) },
		Terminate: p.primitiveTerminate,
		Kill:      p.primitiveKill,
	}

	code, err := waitctl.Run(ops, seq)
	if err != nil {
		return Status{}, err
	}

	p.status = Status{ExitCode: code}
	p.state = Exited
	p.log.Named("stop").Info("process stopped", zap.Int("exit_code", code))
	return p.status, nil
}

// Destroy is idempotent and safe to call after any subset of the other
// operations, including never having called Start. If the process is
// still RUNNING it first attempts the configured stop sequence,
// swallowing any error it produces, then releases every owned handle.
func (p *Process) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Destroyed {
		return
	}
	if p.state == Running {
		_, _ = p.stopLocked(p.opts.stopActions)
	}

	p.stdin.Release()
	p.stdout.Release()
	p.stderr.Release()
	p.destroyPlatform()

	p.state = Destroyed
}
