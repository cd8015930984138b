package procio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunCollectsStdout(t *testing.T) {
	stdout, stderr, status, err := Run(context.Background(),
		helperArgv("echo_stdout_child", "hello world"), WithEnv(helperEnv()))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(stdout))
	require.Empty(t, stderr)
	require.Equal(t, 0, status.ExitCode)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	begin := time.Now()
	_, _, _, err := Run(ctx, helperArgv("sleeper"), WithEnv(helperEnv()))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(begin), 5*time.Second)
}

func TestRunReportsStartFailure(t *testing.T) {
	_, _, _, err := Run(context.Background(),
		[]string{"procio-no-such-binary-anywhere"}, WithEnv(helperEnv()))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFileNotFound)
}
