//go:build windows

package spawn

import (
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/halvorix/procio/internal/ioerr"
	"github.com/halvorix/procio/internal/redirect"
)

// Result is the spawner's output: the child's pid and its process
// handle (Windows needs the handle for wait/terminate/kill; POSIX does
// not, since a pid plus waitpid suffices there).
type Result struct {
	PID     uint32
	Process windows.Handle
}

// Start converts argv into a quoted command line, builds the UTF-16
// environment block and an explicit inherit-handle list containing only
// plan's three child-side handles, and calls CreateProcess with
// CREATE_NEW_PROCESS_GROUP | CREATE_UNICODE_ENVIRONMENT |
// EXTENDED_STARTUPINFO_PRESENT. The child's console window is hidden.
func Start(argv []string, dir string, env []string, plan *redirect.Plan) (Result, error) {
	defer plan.ReleaseChildren()

	cmdLine, err := windows.UTF16PtrFromString(quoteCommandLine(argv))
	if err != nil {
		return Result{}, ioerr.New("spawn", ioerr.KindInvalidUnicode, err)
	}

	var dirPtr *uint16
	if dir != "" {
		dirPtr, err = windows.UTF16PtrFromString(dir)
		if err != nil {
			return Result{}, ioerr.New("spawn", ioerr.KindInvalidUnicode, err)
		}
	}

	var envBlock *uint16
	if env != nil {
		envBlock, err = buildEnvBlock(env)
		if err != nil {
			return Result{}, ioerr.New("spawn", ioerr.KindInvalidUnicode, err)
		}
	}

	handles := []windows.Handle{
		plan.Stdin.Child.WindowsHandle(),
		plan.Stdout.Child.WindowsHandle(),
		plan.Stderr.Child.WindowsHandle(),
	}

	// The handle list only admits inheritable handles, and pipe ends are
	// created non-inheritable, so mark every child-side handle here.
	for _, h := range handles {
		if err := windows.SetHandleInformation(h, windows.HANDLE_FLAG_INHERIT, windows.HANDLE_FLAG_INHERIT); err != nil {
			return Result{}, classify("spawn", err)
		}
	}

	attrList, cleanup, err := newHandleInheritList(handles)
	if err != nil {
		return Result{}, err
	}
	defer cleanup()

	si := &windows.StartupInfoEx{}
	si.StartupInfo.Cb = uint32(unsafe.Sizeof(*si))
	si.StartupInfo.Flags = windows.STARTF_USESTDHANDLES | windows.STARTF_USESHOWWINDOW
	si.StartupInfo.ShowWindow = windows.SW_HIDE
	si.StartupInfo.StdInput = plan.Stdin.Child.WindowsHandle()
	si.StartupInfo.StdOutput = plan.Stdout.Child.WindowsHandle()
	si.StartupInfo.StdErr = plan.Stderr.Child.WindowsHandle()
	si.ProcThreadAttributeList = attrList.List()

	var pi windows.ProcessInformation

	// Suppress the GPF dialog for the duration of the creation call so
	// the child inherits the no-dialogs mode; restored on every return
	// path, including panics, via the defer.
	prevMode := setErrorMode(semFailCriticalErrors | semNoGPFaultErrorBox)
	defer setErrorMode(prevMode)

	flags := uint32(windows.CREATE_NEW_PROCESS_GROUP | windows.CREATE_UNICODE_ENVIRONMENT | windows.EXTENDED_STARTUPINFO_PRESENT)

	err = windows.CreateProcess(
		nil, cmdLine, nil, nil, true, flags,
		envBlock, dirPtr,
		&si.StartupInfo, &pi,
	)
	if err != nil {
		return Result{}, classify("spawn", err)
	}

	windows.CloseHandle(pi.Thread)
	return Result{PID: pi.ProcessId, Process: pi.Process}, nil
}

// quoteCommandLine joins argv applying the Microsoft command-line
// quoting rules: an argument containing whitespace, a tab, or a double
// quote is wrapped in quotes; a run of backslashes immediately before a
// literal double quote (or before the closing quote) is doubled so the
// quote survives CommandLineToArgvW's parsing.
func quoteCommandLine(argv []string) string {
	var b strings.Builder
	for i, a := range argv {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quoteArg(a))
	}
	return b.String()
}

func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for _, r := range s {
		switch r {
		case '\\':
			slashes++
			b.WriteRune(r)
		case '"':
			for ; slashes > 0; slashes-- {
				b.WriteByte('\\')
			}
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			slashes = 0
			b.WriteRune(r)
		}
	}
	for ; slashes > 0; slashes-- {
		b.WriteByte('\\')
	}
	b.WriteByte('"')
	return b.String()
}

// buildEnvBlock flattens NAME=VALUE pairs into the double-null-
// terminated UTF-16 block CreateProcess requires. Each entry is
// converted on its own (UTF16FromString rejects interior NULs, and it
// already appends the per-entry terminator).
func buildEnvBlock(env []string) (*uint16, error) {
	var block []uint16
	for _, kv := range env {
		u16, err := windows.UTF16FromString(kv)
		if err != nil {
			return nil, err
		}
		block = append(block, u16...)
	}
	block = append(block, 0)
	return &block[0], nil
}

const (
	semFailCriticalErrors = 0x0001
	semNoGPFaultErrorBox  = 0x0002
)

var (
	modkernel32      = windows.NewLazySystemDLL("kernel32.dll")
	procSetErrorMode = modkernel32.NewProc("SetErrorMode")
)

// setErrorMode wraps kernel32!SetErrorMode, which never fails and
// returns the previous mode.
func setErrorMode(mode uint32) uint32 {
	r, _, _ := procSetErrorMode.Call(uintptr(mode))
	return uint32(r)
}

func classify(op string, err error) error {
	if err == windows.ERROR_FILE_NOT_FOUND {
		return ioerr.New(op, ioerr.KindFileNotFound, err)
	}
	errno, ok := err.(windows.Errno)
	if !ok {
		return ioerr.New(op, ioerr.KindSystem, err)
	}
	return ioerr.New(op, ioerr.KindFromWindowsError(errno), errno)
}
