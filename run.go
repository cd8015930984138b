package procio

import (
	"bytes"
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run starts argv, collects its complete stdout/stderr, and waits for
// exit. It is a plain composition of Start/Read/Wait/Destroy for the
// run-to-completion case every caller otherwise writes by hand.
//
// On ctx cancellation, Run best-effort stops the child before returning
// ctx's error.
func Run(ctx context.Context, argv []string, opts ...Option) (stdout, stderr []byte, status Status, err error) {
	p := New(opts...)
	defer p.Destroy()

	if err = p.Start(argv); err != nil {
		return nil, nil, Status{}, err
	}

	// Run feeds the child no input; close the write end up front so a
	// child draining stdin sees EOF instead of blocking forever.
	p.CloseStream(Stdin)

	var outBuf, errBuf bytes.Buffer
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error { return drain(p, Stdout, &outBuf) })
	g.Go(func() error { return drain(p, Stderr, &errBuf) })

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case <-ctx.Done():
		_, _ = p.Stop([3]StopStep{{Action: TERMINATE, Timeout: 500 * time.Millisecond}, {Action: KILL, Timeout: 500 * time.Millisecond}, {Action: NOOP}})
		<-done
		return outBuf.Bytes(), errBuf.Bytes(), Status{}, ctx.Err()
	case drainErr := <-done:
		if drainErr != nil && !isKind(drainErr, KindStreamClosed) {
			return outBuf.Bytes(), errBuf.Bytes(), Status{}, drainErr
		}
	}

	status, err = p.Wait(-1)
	return outBuf.Bytes(), errBuf.Bytes(), status, err
}

func drain(p *Process, sel Selector, into *bytes.Buffer) error {
	buf := make([]byte, 32*1024)
	for {
		_, n, err := p.Read(sel, buf)
		if n > 0 {
			into.Write(buf[:n])
		}
		if err != nil {
			if isKind(err, KindStreamClosed) {
				return nil
			}
			return err
		}
	}
}
