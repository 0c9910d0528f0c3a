//go:build windows
// +build windows

package protect

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/vic4key/vmutils"
)

func osProtect(b []byte, prot vmutils.Protection) error {
	var old uint32

	return windows.VirtualProtect(uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)), toOS(prot), &old)
}

// Windows has no write-only or write-execute pages, writable always implies readable.
// https://docs.microsoft.com/en-us/windows/win32/memory/memory-protection-constants
func toOS(prot vmutils.Protection) uint32 {
	switch {
	case prot.Executable() && prot.Writable():
		return windows.PAGE_EXECUTE_READWRITE
	case prot.Executable() && prot.Readable():
		return windows.PAGE_EXECUTE_READ
	case prot.Executable():
		return windows.PAGE_EXECUTE
	case prot.Writable():
		return windows.PAGE_READWRITE
	case prot.Readable():
		return windows.PAGE_READONLY
	default:
		return windows.PAGE_NOACCESS
	}
}
