package waitctl

import (
	"errors"
	"time"

	"github.com/halvorix/procio/internal/ioerr"
)

// Ops is the platform-specific primitive set the composed Run loop
// drives; the root façade supplies closures bound to the right pid or
// process handle.
type Ops struct {
	Wait      func(timeout time.Duration) (int, error)
	Terminate func() error
	Kill      func() error
}

// Run evaluates seq left to right: NOOP steps are skipped outright;
// WAIT performs nothing but the subsequent wait; TERMINATE/KILL invoke
// the matching primitive then wait. The first step whose wait succeeds
// ends the sequence with that exit code. A step whose wait reports
// WAIT_TIMEOUT advances to the next step; any other error aborts the
// sequence immediately.
func Run(ops Ops, seq Sequence) (int, error) {
	seq = seq.Canonicalize()

	for _, step := range seq {
		switch step.Action {
		case NOOP:
			continue
		case TERMINATE:
			if err := ops.Terminate(); err != nil {
				return 0, err
			}
		case KILL:
			if err := ops.Kill(); err != nil {
				return 0, err
			}
		case WAIT:
			// nothing beyond the wait call below
		}

		code, err := ops.Wait(step.Timeout)
		if err == nil {
			return code, nil
		}

		var ioe *ioerr.Error
		if errors.As(err, &ioe) && ioe.Kind == ioerr.KindWaitTimeout {
			continue
		}
		return 0, err
	}

	return 0, ioerr.New("stop", ioerr.KindWaitTimeout, nil)
}
