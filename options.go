package procio

import (
	"time"

	"go.uber.org/zap"

	"github.com/halvorix/procio/internal/redirect"
	"github.com/halvorix/procio/internal/waitctl"
)

// RedirectMode selects how one stream is wired into the child, mirroring
// internal/redirect.Mode at the public surface.
type RedirectMode int

const (
	RedirectPipe RedirectMode = iota
	RedirectInherit
	RedirectDiscard
)

func (m RedirectMode) toInternal() redirect.Mode {
	switch m {
	case RedirectInherit:
		return redirect.Inherit
	case RedirectDiscard:
		return redirect.Discard
	default:
		return redirect.Pipe
	}
}

type options struct {
	dir         string
	env         []string
	envInherit  bool
	redirects   [3]RedirectMode
	stopActions waitctl.Sequence
	logger      *zap.Logger
}

func defaultOptions() options {
	return options{
		envInherit: true,
		redirects:  [3]RedirectMode{RedirectPipe, RedirectPipe, RedirectPipe},
		stopActions: waitctl.Sequence{
			{Action: waitctl.WAIT, Timeout: waitctl.Infinite},
		},
		logger: zap.NewNop(),
	}
}

// Option configures a Process constructed by New.
type Option func(*options)

// WithWorkingDirectory sets the child's working directory. Unset means
// inherit the parent's current directory.
func WithWorkingDirectory(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithEnv replaces the child's environment with exactly env; no
// implicit parent variables are injected.
func WithEnv(env []string) Option {
	return func(o *options) {
		o.env = env
		o.envInherit = false
	}
}

// WithEnvInherit restores the default of inheriting the parent's full
// environment unmodified; useful to undo an earlier WithEnv in
// option-composition helpers.
func WithEnvInherit() Option {
	return func(o *options) {
		o.env = nil
		o.envInherit = true
	}
}

// WithRedirect sets the mode for one of the three standard streams.
func WithRedirect(stream Selector, mode RedirectMode) Option {
	return func(o *options) {
		switch stream {
		case Stdin:
			o.redirects[0] = mode
		case Stdout:
			o.redirects[1] = mode
		case Stderr:
			o.redirects[2] = mode
		}
	}
}

// StopStep is one action of a Stop sequence, paired with its timeout.
type StopStep struct {
	Action  StopAction
	Timeout time.Duration
}

// StopAction enumerates the four primitives a Stop sequence may compose.
type StopAction int

const (
	NOOP StopAction = iota
	WAIT
	TERMINATE
	KILL
)

func (a StopAction) toInternal() waitctl.Action {
	switch a {
	case WAIT:
		return waitctl.WAIT
	case TERMINATE:
		return waitctl.TERMINATE
	case KILL:
		return waitctl.KILL
	default:
		return waitctl.NOOP
	}
}

// WithStopActions configures the three-step sequence Destroy runs on a
// process that is still running; Stop runs the sequence passed to it
// instead. An all-NOOP sequence is canonicalized internally to a single
// unbounded WAIT so destruction can never leak a running child.
func WithStopActions(steps [3]StopStep) Option {
	return func(o *options) {
		var seq waitctl.Sequence
		for i, s := range steps {
			seq[i] = waitctl.Step{Action: s.Action.toInternal(), Timeout: s.Timeout}
		}
		o.stopActions = seq
	}
}

// WithLogger attaches a zap logger. Every subsystem logs through a
// named child (log.Named("start"), log.Named("wait")); the default is
// zap.NewNop() so embedding applications see no output unless they opt
// in.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}
