//go:build linux
// +build linux

package query

import (
	"github.com/prometheus/procfs"

	"github.com/vic4key/vmutils"
)

// osMappings reads the mappings of the current process from /proc/self/maps.
func osMappings(begin, end uintptr) ([]vmutils.Region, error) {
	self, err := procfs.Self()
	if err != nil {
		return nil, err
	}

	maps, err := self.ProcMaps()
	if err != nil {
		return nil, err
	}

	var mappings []vmutils.Region

	for _, m := range maps {
		if m.EndAddr <= begin || m.StartAddr >= end {
			continue
		}

		mappings = append(mappings, vmutils.Region{
			Begin:      m.StartAddr,
			End:        m.EndAddr,
			Protection: fromPerms(m.Perms),
			Mapped:     true,
			Path:       m.Pathname,
		})
	}

	return mappings, nil
}

func fromPerms(perms *procfs.ProcMapPermissions) vmutils.Protection {
	var p vmutils.Protection
	if perms == nil {
		return p
	}

	if perms.Read {
		p |= vmutils.Read
	}

	if perms.Write {
		p |= vmutils.Write
	}

	if perms.Execute {
		p |= vmutils.Execute
	}

	return p
}
