//go:build unix

package ioerr

import "golang.org/x/sys/unix"

// KindFromErrno maps a POSIX errno to a taxonomy Kind. The same switch
// serves both the exec-family failures and the pipe/redirect layers.
func KindFromErrno(errno unix.Errno) Kind {
	switch errno {
	case unix.EAGAIN:
		return KindProcessLimitReached
	case unix.ENOMEM:
		return KindNotEnoughMemory
	case unix.EMFILE, unix.ENFILE:
		return KindPipeLimitReached
	case unix.EACCES, unix.EPERM:
		return KindPermissionDenied
	case unix.ELOOP:
		return KindSymlinkLoop
	case unix.ENAMETOOLONG:
		return KindNameTooLong
	case unix.ENOENT, unix.ENOTDIR:
		return KindFileNotFound
	case unix.EINTR:
		return KindInterrupted
	case unix.E2BIG:
		return KindArgsTooLong
	case unix.ENOEXEC:
		return KindNotExecutable
	default:
		return KindSystem
	}
}
