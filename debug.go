package procio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// DumpErrorChain renders err and every error it wraps, one line per
// link, the way a caller debugging a failed Start/Wait/Stop call would
// want printed.
func DumpErrorChain(err error) string {
	if err == nil {
		return "<nil>"
	}
	var b strings.Builder
	for i, e := 0, err; e != nil; i, e = i+1, errors.Unwrap(e) {
		fmt.Fprintf(&b, "[%d] %s\n", i, e.Error())
	}
	return b.String()
}

// DumpErrorChainVerbose is DumpErrorChain's *Error-aware variant: for
// every link that is a *procio.Error it additionally spew.Sdump's the
// struct (Op/Kind/Err) so Kind misclassification bugs are visible at a
// glance.
func DumpErrorChainVerbose(err error) string {
	if err == nil {
		return "<nil>"
	}
	// Methods are disabled so spew dumps the struct's fields instead of
	// calling (*Error).Error() again.
	dumper := spew.ConfigState{Indent: " ", DisableMethods: true}
	var b strings.Builder
	for i, e := 0, err; e != nil; i, e = i+1, errors.Unwrap(e) {
		fmt.Fprintf(&b, "[%d] %s\n", i, e.Error())
		if ioe, ok := e.(*Error); ok {
			b.WriteString(dumper.Sdump(ioe))
		}
	}
	return b.String()
}
