package memcall

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vic4key/vmutils"
)

func TestFlagOf(t *testing.T) {
	tests := []struct {
		Name       string
		Protection vmutils.Protection
		Flag       MemoryProtectionFlag
		OK         bool
	}{
		{Name: "none", Protection: vmutils.None, Flag: NoAccess(), OK: true},
		{Name: "read only", Protection: vmutils.ReadOnly, Flag: ReadOnly(), OK: true},
		{Name: "read write", Protection: vmutils.ReadWrite, Flag: ReadWrite(), OK: true},
		{Name: "read execute", Protection: vmutils.ReadExecute},
		{Name: "read write execute", Protection: vmutils.ReadWriteExecute},
		{Name: "write only", Protection: vmutils.Write},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			flag, ok := FlagOf(tt.Protection)
			assert.Equal(t, tt.OK, ok)

			if tt.OK {
				assert.Equal(t, tt.Flag, flag)
			}
		})
	}
}

func TestDefault_AllocProtectFree(t *testing.T) {
	b, err := Default.Alloc(1)
	if assert.NoError(t, err) {
		assert.NoError(t, Default.Protect(b, ReadOnly()))
		assert.NoError(t, Default.Protect(b, ReadWrite()))
		b[0] = 1
		assert.NoError(t, Default.Free(b))
	}
}
