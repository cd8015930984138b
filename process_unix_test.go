//go:build unix

package procio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestProbeFDDistinguishesOpenFromClosed(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	require.Equal(t, fds[0], probeFD(fds[0]))

	// An fd number far beyond any open-file limit is never open.
	require.Equal(t, -1, probeFD(1<<30))
}

func TestStartClassifiesUnexecutableCandidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unexec")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644))

	p := New()
	defer p.Destroy()

	err := p.Start([]string{path})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.Equal(t, NotStarted, p.State())
}
