//go:build windows

package ioerr

import "golang.org/x/sys/windows"

// KindFromWindowsError maps a Windows error code to a taxonomy Kind.
// Codes without a specific taxonomy entry fold to the generic system
// error, which preserves the raw value for retrieval.
func KindFromWindowsError(err error) Kind {
	switch err {
	case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND:
		return KindFileNotFound
	case windows.ERROR_ACCESS_DENIED:
		return KindPermissionDenied
	case windows.ERROR_NOT_ENOUGH_MEMORY, windows.ERROR_OUTOFMEMORY:
		return KindNotEnoughMemory
	case windows.ERROR_FILENAME_EXCED_RANGE:
		return KindNameTooLong
	case windows.ERROR_NO_PROC_SLOTS, windows.ERROR_MAX_THRDS_REACHED:
		return KindProcessLimitReached
	case windows.ERROR_NO_UNICODE_TRANSLATION:
		return KindInvalidUnicode
	case windows.ERROR_BAD_EXE_FORMAT:
		return KindNotExecutable
	default:
		return KindSystem
	}
}
