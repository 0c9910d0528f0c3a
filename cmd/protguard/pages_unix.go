//go:build !windows
// +build !windows

package main

import (
	"golang.org/x/sys/unix"

	"github.com/vic4key/vmutils"
	"github.com/vic4key/vmutils/internal/memcall"
)

// punch unmaps [addr, addr+length) inside the scratch allocation.
func punch(addr, length uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, length, 0)
	if errno != 0 {
		return errno
	}

	return nil
}

// release frees the scratch allocation. memcall.Free cannot free an allocation with a hole in it, so a holed
// allocation is unmapped directly.
func release(b []byte, holed bool) error {
	if !holed {
		return memcall.Default.Free(b)
	}

	r := vmutils.RangeOf(b)

	return punch(r.Begin, r.Len())
}
