//go:build unix

package iopipe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halvorix/procio/internal/ioerr"
)

func TestCreateReadWrite(t *testing.T) {
	p, err := Create()
	require.NoError(t, err)
	defer p.Read.Release()
	defer p.Write.Release()

	n, err := Write(p.Write, []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 16)
	n, err = Read(p.Read, buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestReadReportsStreamClosedOnWriteEndClose(t *testing.T) {
	p, err := Create()
	require.NoError(t, err)
	defer p.Read.Release()

	p.Write.Release()

	buf := make([]byte, 16)
	_, err = Read(p.Read, buf)
	require.ErrorIs(t, err, ioerr.Sentinel(ioerr.KindStreamClosed))
}

func TestWaitSkipsClosedEnd(t *testing.T) {
	out, err := Create()
	require.NoError(t, err)
	defer out.Read.Release()

	errp, err := Create()
	require.NoError(t, err)
	defer errp.Read.Release()
	defer errp.Write.Release()

	out.Write.Release()

	_, err = Write(errp.Write, []byte("x"))
	require.NoError(t, err)

	end, err := Wait(out.Read, errp.Read, true, false)
	require.NoError(t, err)
	require.Equal(t, EndErr, end)
}

func TestWaitFailsWhenBothClosed(t *testing.T) {
	out, err := Create()
	require.NoError(t, err)
	errp, err := Create()
	require.NoError(t, err)
	defer out.Read.Release()
	defer errp.Read.Release()

	_, err = Wait(out.Read, errp.Read, true, true)
	require.Error(t, err)
}
