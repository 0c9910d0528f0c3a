//go:build !windows
// +build !windows

package protect

import (
	"golang.org/x/sys/unix"

	"github.com/vic4key/vmutils"
)

func osProtect(b []byte, prot vmutils.Protection) error {
	return unix.Mprotect(b, toOS(prot))
}

func toOS(prot vmutils.Protection) int {
	flags := unix.PROT_NONE

	if prot.Readable() {
		flags |= unix.PROT_READ
	}

	if prot.Writable() {
		flags |= unix.PROT_WRITE
	}

	if prot.Executable() {
		flags |= unix.PROT_EXEC
	}

	return flags
}
