package memcall

import (
	"github.com/awnumar/memcall"

	"github.com/vic4key/vmutils"
)

// MemoryProtectionFlag specifies some particular memory protection flag.
type MemoryProtectionFlag = memcall.MemoryProtectionFlag

// NoAccess specifies that the memory should be marked unreadable and immutable.
func NoAccess() MemoryProtectionFlag {
	return memcall.NoAccess()
}

// ReadOnly specifies that the memory should be marked read-only (immutable).
func ReadOnly() MemoryProtectionFlag {
	return memcall.ReadOnly()
}

// ReadWrite specifies that the memory should be made readable and writable.
func ReadWrite() MemoryProtectionFlag {
	return memcall.ReadWrite()
}

// FlagOf returns the memcall flag equivalent to p. memcall only knows about
// non-executable protections, so ok is false for anything else.
func FlagOf(p vmutils.Protection) (flag MemoryProtectionFlag, ok bool) {
	switch p {
	case vmutils.None:
		return NoAccess(), true
	case vmutils.ReadOnly:
		return ReadOnly(), true
	case vmutils.ReadWrite:
		return ReadWrite(), true
	default:
		return flag, false
	}
}
