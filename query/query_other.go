//go:build !linux && !windows
// +build !linux,!windows

package query

import (
	"github.com/pkg/errors"

	"github.com/vic4key/vmutils"
)

// TODO: walk the task's regions with mach_vm_region on darwin.
func osMappings(begin, end uintptr) ([]vmutils.Region, error) {
	return nil, errors.WithStack(vmutils.ErrUnsupported)
}
