//go:build windows
// +build windows

package main

import (
	"golang.org/x/sys/windows"

	"github.com/vic4key/vmutils"
	"github.com/vic4key/vmutils/internal/memcall"
)

// punch decommits [addr, addr+length). The pages stay reserved, which the region query reports as unmapped.
func punch(addr, length uintptr) error {
	return windows.VirtualFree(addr, length, windows.MEM_DECOMMIT)
}

// release frees the scratch allocation. memcall.Free cannot free an allocation with a hole in it, so a holed
// allocation is released directly.
func release(b []byte, holed bool) error {
	if !holed {
		return memcall.Default.Free(b)
	}

	return windows.VirtualFree(vmutils.RangeOf(b).Begin, 0, windows.MEM_RELEASE)
}
