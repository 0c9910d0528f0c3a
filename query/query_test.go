package query

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/vic4key/vmutils"
)

func mapped(begin, end uintptr, prot vmutils.Protection) vmutils.Region {
	return vmutils.Region{Begin: begin, End: end, Protection: prot, Mapped: true}
}

func free(begin, end uintptr) vmutils.Region {
	return vmutils.Region{Begin: begin, End: end}
}

func TestCover(t *testing.T) {
	tests := []struct {
		Name     string
		Mappings []vmutils.Region
		Begin    uintptr
		End      uintptr
		Expected []vmutils.Region
	}{
		{
			Name:     "exact",
			Mappings: []vmutils.Region{mapped(0x1000, 0x2000, vmutils.ReadOnly), mapped(0x2000, 0x3000, vmutils.ReadWrite)},
			Begin:    0x1000,
			End:      0x3000,
			Expected: []vmutils.Region{mapped(0x1000, 0x2000, vmutils.ReadOnly), mapped(0x2000, 0x3000, vmutils.ReadWrite)},
		},
		{
			Name:     "clipped",
			Mappings: []vmutils.Region{mapped(0x0000, 0x4000, vmutils.ReadExecute)},
			Begin:    0x1000,
			End:      0x3000,
			Expected: []vmutils.Region{mapped(0x1000, 0x3000, vmutils.ReadExecute)},
		},
		{
			Name:     "hole in the middle",
			Mappings: []vmutils.Region{mapped(0x1000, 0x2000, vmutils.ReadOnly), mapped(0x3000, 0x4000, vmutils.ReadOnly)},
			Begin:    0x1000,
			End:      0x4000,
			Expected: []vmutils.Region{
				mapped(0x1000, 0x2000, vmutils.ReadOnly),
				free(0x2000, 0x3000),
				mapped(0x3000, 0x4000, vmutils.ReadOnly),
			},
		},
		{
			Name:     "holes at both ends",
			Mappings: []vmutils.Region{mapped(0x2000, 0x3000, vmutils.ReadWrite)},
			Begin:    0x1000,
			End:      0x4000,
			Expected: []vmutils.Region{free(0x1000, 0x2000), mapped(0x2000, 0x3000, vmutils.ReadWrite), free(0x3000, 0x4000)},
		},
		{
			Name:     "nothing mapped",
			Begin:    0x1000,
			End:      0x2000,
			Expected: []vmutils.Region{free(0x1000, 0x2000)},
		},
		{
			Name:     "top of the address space",
			Mappings: []vmutils.Region{mapped(0x1000, 0x2000, vmutils.ReadOnly)},
			Begin:    ^uintptr(0) &^ 0xfff,
			End:      ^uintptr(0),
			Expected: []vmutils.Region{free(^uintptr(0)&^0xfff, ^uintptr(0))},
		},
		{
			Name:     "unsorted and outside",
			Mappings: []vmutils.Region{mapped(0x5000, 0x6000, vmutils.None), mapped(0x2000, 0x3000, vmutils.ReadWrite), mapped(0x1000, 0x2000, vmutils.ReadOnly)},
			Begin:    0x1000,
			End:      0x3000,
			Expected: []vmutils.Region{mapped(0x1000, 0x2000, vmutils.ReadOnly), mapped(0x2000, 0x3000, vmutils.ReadWrite)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, cover(tt.Mappings, tt.Begin, tt.End))
		})
	}
}

func TestPageEnd(t *testing.T) {
	tests := []struct {
		Name     string
		End      uintptr
		Expected uintptr
	}{
		{Name: "aligned", End: 2 * pageSize, Expected: 2 * pageSize},
		{Name: "unaligned", End: pageSize + 1, Expected: 2 * pageSize},
		{Name: "last boundary", End: -pageSize, Expected: -pageSize},
		{Name: "inside last page", End: -pageSize + 1, Expected: ^uintptr(0)},
		{Name: "highest address", End: ^uintptr(0), Expected: ^uintptr(0)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Expected, pageEnd(tt.End))
		})
	}
}

func TestQuery_InvalidRange(t *testing.T) {
	regions, err := Query(0x2000, 0x1000)
	assert.Nil(t, regions)
	assert.True(t, errors.Is(err, vmutils.ErrInvalidRange))
}

func TestQuery_EmptyRange(t *testing.T) {
	regions, err := Query(0x2000, 0x2000)
	assert.NoError(t, err)
	assert.Empty(t, regions)
}

func TestQueryWithStatus(t *testing.T) {
	var st vmutils.Status

	regions := QueryWithStatus(0x2000, 0x1000, &st)
	assert.Nil(t, regions)
	assert.True(t, errors.Is(st.Err(), vmutils.ErrInvalidRange))

	regions = QueryWithStatus(0x1000, 0x1000, &st)
	assert.Empty(t, regions)
	assert.True(t, st.OK())
}
