//go:build linux
// +build linux

package protect

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/vic4key/vmutils"
	"github.com/vic4key/vmutils/query"
)

func TestProtect_Executable(t *testing.T) {
	b, err := unix.Mmap(-1, 0, int(2*PageSize()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	require.NoError(t, err)

	defer func() {
		assert.NoError(t, unix.Munmap(b))
	}()

	r := vmutils.RangeOf(b)

	// Only the first page is touched, the range is widened to it.
	require.NoError(t, Protect(r.Begin+1, r.Begin+2, vmutils.ReadExecute))

	regions, err := query.Query(r.Begin, r.End)
	require.NoError(t, err)

	if assert.Len(t, regions, 2) {
		assert.Equal(t, vmutils.ReadExecute, regions[0].Protection)
		assert.Equal(t, vmutils.ReadWrite, regions[1].Protection)
	}

	require.NoError(t, Protect(r.Begin, r.End, vmutils.ReadWrite))
}

func TestProtect_Concurrent(t *testing.T) {
	const workers = 8

	ps := int(PageSize())

	b, err := unix.Mmap(-1, 0, workers*ps, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	require.NoError(t, err)

	defer func() {
		assert.NoError(t, unix.Munmap(b))
	}()

	r := vmutils.RangeOf(b)

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(page uintptr) {
			defer wg.Done()

			assert.NoError(t, Protect(page, page+PageSize(), vmutils.ReadOnly))
			assert.NoError(t, Protect(page, page+PageSize(), vmutils.ReadWriteExecute))
			assert.NoError(t, Protect(page, page+PageSize(), vmutils.ReadWrite))
		}(r.Begin + uintptr(i*ps))
	}

	wg.Wait()

	regions, err := query.Query(r.Begin, r.End)
	require.NoError(t, err)

	for _, region := range regions {
		assert.Equal(t, vmutils.ReadWrite, region.Protection)
	}
}
