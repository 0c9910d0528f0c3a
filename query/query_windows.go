//go:build windows
// +build windows

package query

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/vic4key/vmutils"
)

// osMappings walks the committed regions overlapping [begin, end) with VirtualQuery. Reserved and free pages
// cannot be protected and are left out, so they surface as gaps.
func osMappings(begin, end uintptr) ([]vmutils.Region, error) {
	var mappings []vmutils.Region

	for addr := begin; addr < end; {
		var info windows.MemoryBasicInformation
		if err := windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
			return nil, err
		}

		next := info.BaseAddress + info.RegionSize
		if next <= addr {
			break
		}

		if info.State == windows.MEM_COMMIT {
			mappings = append(mappings, vmutils.Region{
				Begin:      info.BaseAddress,
				End:        next,
				Protection: fromOS(info.Protect),
				Mapped:     true,
			})
		}

		addr = next
	}

	return mappings, nil
}

func fromOS(prot uint32) vmutils.Protection {
	switch prot &^ (windows.PAGE_GUARD | windows.PAGE_NOCACHE | windows.PAGE_WRITECOMBINE) {
	case windows.PAGE_READONLY:
		return vmutils.ReadOnly
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		return vmutils.ReadWrite
	case windows.PAGE_EXECUTE:
		return vmutils.Execute
	case windows.PAGE_EXECUTE_READ:
		return vmutils.ReadExecute
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		return vmutils.ReadWriteExecute
	default:
		return vmutils.None
	}
}
