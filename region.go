package vmutils

import (
	"fmt"
	"unsafe"
)

// Ranger is implemented by any value that delimits an address range.
type Ranger interface {
	Bounds() (begin, end uintptr)
}

// Range is the half-open address range [Begin, End).
type Range struct {
	Begin uintptr
	End   uintptr
}

// RangeOf returns the range occupied by the backing array of b.
func RangeOf(b []byte) Range {
	if len(b) == 0 {
		return Range{}
	}

	begin := uintptr(unsafe.Pointer(unsafe.SliceData(b)))

	return Range{Begin: begin, End: begin + uintptr(len(b))}
}

// Bounds implements Ranger.
func (r Range) Bounds() (begin, end uintptr) {
	return r.Begin, r.End
}

// Len returns the number of bytes in r.
func (r Range) Len() uintptr {
	if r.End < r.Begin {
		return 0
	}

	return r.End - r.Begin
}

// Contains reports whether addr lies inside r.
func (r Range) Contains(addr uintptr) bool {
	return addr >= r.Begin && addr < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%#x, %#x)", r.Begin, r.End)
}

// Region describes a span of the address space with uniform protection.
type Region struct {
	Begin      uintptr
	End        uintptr
	Protection Protection

	// Mapped is false when the span is not backed by any mapping.
	Mapped bool

	// Path is the file backing the mapping, if the platform reports one.
	Path string
}

// IsMapped reports whether r is backed by a mapping and may be protected.
func (r Region) IsMapped() bool {
	return r.Mapped
}

// Bounds implements Ranger.
func (r Region) Bounds() (begin, end uintptr) {
	return r.Begin, r.End
}

// Range returns the address range of r.
func (r Region) Range() Range {
	return Range{Begin: r.Begin, End: r.End}
}

func (r Region) String() string {
	if !r.Mapped {
		return fmt.Sprintf("%s free", r.Range())
	}

	return fmt.Sprintf("%s %s", r.Range(), r.Protection)
}
