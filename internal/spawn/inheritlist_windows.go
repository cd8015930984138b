//go:build windows

package spawn

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/halvorix/procio/internal/ioerr"
)

const procThreadAttributeHandleList = 0x00020002

// newHandleInheritList builds a PROC_THREAD_ATTRIBUTE_LIST containing
// exactly the given handles, so CreateProcess inherits only those three
// (the planned child-side redirection handles) instead of every
// inheritable handle the parent process happens to hold open.
func newHandleInheritList(handles []windows.Handle) (*windows.ProcThreadAttributeListContainer, func(), error) {
	list, err := windows.NewProcThreadAttributeList(1)
	if err != nil {
		return nil, func() {}, ioerr.New("spawn inherit list", ioerr.KindSystem, err)
	}
	err = list.Update(
		procThreadAttributeHandleList,
		unsafe.Pointer(&handles[0]),
		uintptr(len(handles))*unsafe.Sizeof(handles[0]),
	)
	if err != nil {
		return nil, func() {}, ioerr.New("spawn inherit list", ioerr.KindSystem, err)
	}
	return list, func() { list.Delete() }, nil
}
