// Package query enumerates the memory regions of the current process.
package query

import (
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/vic4key/vmutils"
)

var pageSize = uintptr(os.Getpagesize())

// Default is the Querier used by Query and QueryWithStatus.
var Default vmutils.Querier = vmutils.QuerierFunc(query)

// Query returns the regions covering the pages spanning [begin, end), clipped to those pages and in ascending
// address order. Unmapped sub-ranges are reported as regions for which IsMapped returns false. An empty range
// yields no regions.
func Query(begin, end uintptr) ([]vmutils.Region, error) {
	return Default.Query(begin, end)
}

// QueryWithStatus is Query reporting its failure through st.
func QueryWithStatus(begin, end uintptr, st *vmutils.Status) []vmutils.Region {
	st.Reset()

	regions, err := Query(begin, end)
	st.Set(err)

	return regions
}

func query(begin, end uintptr) ([]vmutils.Region, error) {
	if end < begin {
		return nil, errors.WithStack(vmutils.ErrInvalidRange)
	}

	if begin == end {
		return nil, nil
	}

	begin &^= pageSize - 1
	end = pageEnd(end)

	mappings, err := osMappings(begin, end)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to enumerate memory regions")
	}

	return cover(mappings, begin, end), nil
}

// pageEnd rounds end up to a page boundary. The last page of the address space has no boundary above it, so ends
// inside it are clamped to the highest address.
func pageEnd(end uintptr) uintptr {
	rounded := (end + pageSize - 1) &^ (pageSize - 1)
	if rounded < end {
		return ^uintptr(0)
	}

	return rounded
}

// cover clips mappings to [begin, end) and fills the holes between them with unmapped regions.
func cover(mappings []vmutils.Region, begin, end uintptr) []vmutils.Region {
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Begin < mappings[j].Begin
	})

	var regions []vmutils.Region

	cur := begin

	for _, m := range mappings {
		if m.End <= cur || m.Begin >= end {
			continue
		}

		if m.Begin > cur {
			regions = append(regions, vmutils.Region{Begin: cur, End: m.Begin})
			cur = m.Begin
		}

		m.Begin = cur
		if m.End > end {
			m.End = end
		}

		m.Mapped = true
		regions = append(regions, m)
		cur = m.End

		if cur >= end {
			break
		}
	}

	if cur < end {
		regions = append(regions, vmutils.Region{Begin: cur, End: end})
	}

	return regions
}
