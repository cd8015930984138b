package waitctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/halvorix/procio/internal/ioerr"
)

func errWaitTimeout() error {
	return ioerr.New("wait", ioerr.KindWaitTimeout, nil)
}

func TestCanonicalize_AllNoopBecomesInfiniteWait(t *testing.T) {
	seq := Sequence{{Action: NOOP}, {Action: NOOP}, {Action: NOOP}}
	got := seq.Canonicalize()
	require.Equal(t, WAIT, got[0].Action)
	require.Equal(t, Infinite, got[0].Timeout)
}

func TestCanonicalize_LeavesNonNoopSequenceUnchanged(t *testing.T) {
	seq := Sequence{
		{Action: TERMINATE, Timeout: 500 * time.Millisecond},
		{Action: KILL, Timeout: 500 * time.Millisecond},
		{Action: NOOP},
	}
	got := seq.Canonicalize()
	require.Equal(t, seq, got)
}

func TestRun_ShortCircuitsOnFirstSuccessfulWait(t *testing.T) {
	var terminateCalled, killCalled bool
	ops := Ops{
		Wait: func(time.Duration) (int, error) { return 15, nil },
		Terminate: func() error {
			terminateCalled = true
			return nil
		},
		Kill: func() error {
			killCalled = true
			return nil
		},
	}
	code, err := Run(ops, Sequence{
		{Action: TERMINATE, Timeout: time.Second},
		{Action: KILL, Timeout: time.Second},
		{Action: NOOP},
	})
	require.NoError(t, err)
	require.Equal(t, 15, code)
	require.True(t, terminateCalled)
	require.False(t, killCalled)
}

func TestRun_AdvancesPastWaitTimeout(t *testing.T) {
	calls := 0
	ops := Ops{
		Wait: func(time.Duration) (int, error) {
			calls++
			if calls == 1 {
				return 0, errWaitTimeout()
			}
			return 9, nil
		},
		Terminate: func() error { return nil },
		Kill:      func() error { return nil },
	}
	code, err := Run(ops, Sequence{
		{Action: TERMINATE, Timeout: time.Millisecond},
		{Action: KILL, Timeout: time.Second},
		{Action: NOOP},
	})
	require.NoError(t, err)
	require.Equal(t, 9, code)
	require.Equal(t, 2, calls)
}
