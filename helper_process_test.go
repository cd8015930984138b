package procio

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"testing"
	"time"
)

// helperProcessEnv is the sentinel the test binary re-execs itself
// under to act as a throwaway child process, following the stdlib
// os/exec TestHelperProcess convention rather than shipping
// separately-built fixture binaries.
const helperProcessEnv = "PROCIO_HELPER_PROCESS"

func TestMain(m *testing.M) {
	if os.Getenv(helperProcessEnv) == "1" {
		os.Exit(runHelperProcess())
	}
	os.Exit(m.Run())
}

// runHelperProcess dispatches on os.Args[1] (the scenario name) and
// implements the child-process scenarios the suite drives.
func runHelperProcess() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "helper: missing scenario")
		return 2
	}
	switch os.Args[1] {
	case "echo_stdout_child":
		fmt.Fprint(os.Stdout, strings.Join(os.Args[2:], " "))
		return 0
	case "dual_stream_echo":
		line, _ := io.ReadAll(os.Stdin)
		s := strings.TrimRight(string(line), "\n")
		fmt.Fprint(os.Stdout, s)
		fmt.Fprint(os.Stderr, s)
		return 0
	case "sleeper":
		time.Sleep(25 * time.Second)
		return 0
	case "ignore_sigterm_sleeper":
		signal.Ignore(syscall.SIGTERM)
		time.Sleep(25 * time.Second)
		return 0
	case "print_cwd":
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Fprint(os.Stdout, wd)
		return 0
	case "print_env":
		for _, kv := range os.Environ() {
			if strings.HasPrefix(kv, "IP=") || strings.HasPrefix(kv, "PORT=") {
				fmt.Fprint(os.Stdout, kv)
			}
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "helper: unknown scenario %q\n", os.Args[1])
		return 2
	}
}

// helperArgv returns the argv for re-execing the current test binary as
// a helper process running the named scenario, with extra following as
// additional argv entries.
func helperArgv(scenario string, extra ...string) []string {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	return append([]string{self, scenario}, extra...)
}
