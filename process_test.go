package procio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func resolveSymlinks(p string) (string, error) {
	return filepath.EvalSymlinks(p)
}

func helperEnv(extra ...string) []string {
	env := append([]string{}, os.Environ()...)
	env = append(env, helperProcessEnv+"=1")
	env = append(env, extra...)
	return env
}

func readAllUntilClosed(t *testing.T, p *Process, sel Selector) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 4096)
	for {
		_, n, err := p.Read(sel, buf)
		out = append(out, buf[:n]...)
		if err != nil {
			require.True(t, isKind(err, KindStreamClosed), "unexpected read error: %v", err)
			return out
		}
	}
}

func TestEchoStdout(t *testing.T) {
	p := New(WithEnv(helperEnv()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("echo_stdout_child", "hello world")))
	require.Equal(t, Running, p.State())

	out := readAllUntilClosed(t, p, Stdout)
	require.Equal(t, "hello world", string(out))

	status, err := p.Wait(-1)
	require.NoError(t, err)
	require.Equal(t, 0, status.ExitCode)
	require.Equal(t, Exited, p.State())
}

func TestMixedStreams(t *testing.T) {
	p := New(WithEnv(helperEnv()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("dual_stream_echo")))

	_, err := p.Write([]byte("ping\n"))
	require.NoError(t, err)
	p.CloseStream(Stdin)

	outGot := readAllUntilClosed(t, p, Stdout)
	errGot := readAllUntilClosed(t, p, Stderr)
	require.Equal(t, "ping", string(outGot))
	require.Equal(t, "ping", string(errGot))

	status, err := p.Wait(-1)
	require.NoError(t, err)
	require.Equal(t, 0, status.ExitCode)
}

func TestTerminateSleeper(t *testing.T) {
	p := New(WithEnv(helperEnv()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("sleeper")))

	_, err := p.Wait(50 * time.Millisecond)
	require.Error(t, err)
	require.True(t, isKind(err, KindWaitTimeout))

	status, err := p.Stop([3]StopStep{
		{Action: TERMINATE, Timeout: 500 * time.Millisecond},
		{Action: NOOP},
		{Action: NOOP},
	})
	require.NoError(t, err)
	require.NotEqual(t, 0, status.ExitCode)
	require.Equal(t, Exited, p.State())
}

func TestForcedKill(t *testing.T) {
	p := New(WithEnv(helperEnv()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("sleeper")))

	status, err := p.Stop([3]StopStep{
		{Action: KILL, Timeout: 500 * time.Millisecond},
		{Action: NOOP},
		{Action: NOOP},
	})
	require.NoError(t, err)
	require.NotEqual(t, 0, status.ExitCode)
}

func TestWorkingDirectory(t *testing.T) {
	p := New(WithEnv(helperEnv()), WithWorkingDirectory(os.TempDir()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("print_cwd")))
	out := readAllUntilClosed(t, p, Stdout)

	wantDir, err := resolveSymlinks(os.TempDir())
	require.NoError(t, err)
	gotDir, err := resolveSymlinks(string(out))
	require.NoError(t, err)
	require.Equal(t, wantDir, gotDir)

	_, err = p.Wait(-1)
	require.NoError(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	p := New(WithEnv(helperEnv("IP=127.0.0.1", "PORT=8080")))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("print_env")))
	out := readAllUntilClosed(t, p, Stdout)
	require.Equal(t, "IP=127.0.0.1PORT=8080", string(out))

	_, err := p.Wait(-1)
	require.NoError(t, err)
}

func TestEnvironmentInheritedByDefault(t *testing.T) {
	// No WithEnv here: the child must observe the parent's full
	// environment, including the helper sentinel and the two probe
	// variables, without any explicit env being passed.
	t.Setenv(helperProcessEnv, "1")
	t.Setenv("IP", "127.0.0.1")
	t.Setenv("PORT", "8080")

	p := New()
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("print_env")))
	out := readAllUntilClosed(t, p, Stdout)
	require.Contains(t, string(out), "IP=127.0.0.1")
	require.Contains(t, string(out), "PORT=8080")

	status, err := p.Wait(-1)
	require.NoError(t, err)
	require.Equal(t, 0, status.ExitCode)
}

func TestWaitCachesStatusAfterExit(t *testing.T) {
	p := New(WithEnv(helperEnv()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("echo_stdout_child", "x")))
	readAllUntilClosed(t, p, Stdout)

	first, err := p.Wait(-1)
	require.NoError(t, err)

	second, err := p.Wait(0)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDestroyIsIdempotent(t *testing.T) {
	p := New()
	p.Destroy()
	p.Destroy()
	require.Equal(t, Destroyed, p.State())
}

func TestReadAnyMultiplexesBothStreams(t *testing.T) {
	p := New(WithEnv(helperEnv()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("dual_stream_echo")))

	_, err := p.Write([]byte("ping\n"))
	require.NoError(t, err)
	p.CloseStream(Stdin)

	var out, errOut []byte
	buf := make([]byte, 4096)
	for {
		sel, n, err := p.Read(Any, buf)
		switch sel {
		case Stdout:
			out = append(out, buf[:n]...)
		case Stderr:
			errOut = append(errOut, buf[:n]...)
		}
		if err != nil {
			require.True(t, isKind(err, KindStreamClosed), "unexpected read error: %v", err)
			if sel == Any {
				// both ends closed; nothing left to multiplex
				break
			}
			// one end closed; keep serving the sibling
		}
	}

	require.Equal(t, "ping", string(out))
	require.Equal(t, "ping", string(errOut))

	_, err = p.Wait(-1)
	require.NoError(t, err)
}

func TestStopEscalatesToKillWhenTerminateIgnored(t *testing.T) {
	p := New(WithEnv(helperEnv()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("ignore_sigterm_sleeper")))

	// give the child a moment to install its ignore disposition
	time.Sleep(200 * time.Millisecond)

	begin := time.Now()
	status, err := p.Stop([3]StopStep{
		{Action: TERMINATE, Timeout: 300 * time.Millisecond},
		{Action: KILL, Timeout: 2 * time.Second},
		{Action: NOOP},
	})
	require.NoError(t, err)
	require.Less(t, time.Since(begin), 5*time.Second)
	require.NotEqual(t, 0, status.ExitCode)
	require.Equal(t, Exited, p.State())
}

func TestStartRejectsSecondStart(t *testing.T) {
	p := New(WithEnv(helperEnv()))
	defer p.Destroy()

	require.NoError(t, p.Start(helperArgv("echo_stdout_child", "x")))
	require.Error(t, p.Start(helperArgv("echo_stdout_child", "x")))

	readAllUntilClosed(t, p, Stdout)
	_, err := p.Wait(-1)
	require.NoError(t, err)
}

func TestStartRejectsEmptyArgv(t *testing.T) {
	p := New()
	defer p.Destroy()
	require.Error(t, p.Start(nil))
	require.Equal(t, NotStarted, p.State())
}

func TestReadBeforeStartFails(t *testing.T) {
	p := New()
	defer p.Destroy()
	_, _, err := p.Read(Stdout, make([]byte, 8))
	require.Error(t, err)
}

func TestStartFileNotFound(t *testing.T) {
	p := New()
	defer p.Destroy()

	err := p.Start([]string{"procio-no-such-binary-anywhere"})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrFileNotFound)
	require.Equal(t, NotStarted, p.State())
}
