// Package protect changes the access protection of address ranges in the current process.
//
// Ranges are widened to whole pages before the protection is changed, since that is the granularity the operating
// system works at.
package protect

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/vic4key/vmutils"
	"github.com/vic4key/vmutils/internal/memcall"
)

var pageSize = uintptr(os.Getpagesize())

// Default is the Protector used by Protect and ProtectWithStatus.
var Default vmutils.Protector = &Protector{mc: memcall.Default}

// Protect sets the protection of the pages spanning [begin, end) to prot.
func Protect(begin, end uintptr, prot vmutils.Protection) error {
	return Default.Protect(begin, end, prot)
}

// ProtectWithStatus is Protect reporting its failure through st.
func ProtectWithStatus(begin, end uintptr, prot vmutils.Protection, st *vmutils.Status) {
	st.Reset()
	st.Set(Protect(begin, end, prot))
}

// Protector implements vmutils.Protector for the current process. The zero value is ready to use and is safe for
// concurrent use.
type Protector struct {
	mc memcall.Interface
}

func (p *Protector) memcall() memcall.Interface {
	if p.mc == nil {
		return memcall.Default
	}

	return p.mc
}

// Protect sets the protection of the pages spanning [begin, end) to prot. An empty range is a no-op.
func (p *Protector) Protect(begin, end uintptr, prot vmutils.Protection) error {
	if end < begin {
		return errors.WithStack(vmutils.ErrInvalidRange)
	}

	if begin == end {
		return nil
	}

	pages := PageSpan(begin, end)
	b := unsafe.Slice((*byte)(unsafe.Pointer(pages.Begin)), pages.Len())

	var err error
	if flag, ok := memcall.FlagOf(prot); ok {
		err = p.memcall().Protect(b, flag)
	} else {
		err = osProtect(b, prot)
	}

	return errors.WithMessagef(err, "unable to mark %s as %s", pages, prot)
}

// PageSpan returns [begin, end) widened to page boundaries. An end inside the last page of the address space is
// clamped to the highest address.
func PageSpan(begin, end uintptr) vmutils.Range {
	span := vmutils.Range{
		Begin: begin &^ (pageSize - 1),
		End:   (end + pageSize - 1) &^ (pageSize - 1),
	}

	if span.End < end {
		span.End = ^uintptr(0)
	}

	return span
}

// PageSize returns the page size used to align ranges.
func PageSize() uintptr {
	return pageSize
}
