package vmutils

import (
	"github.com/pkg/errors"
)

// Protection is the set of access permissions enforced on a region of memory.
type Protection uint8

const (
	None    Protection = 0
	Read    Protection = 1
	Write   Protection = 2
	Execute Protection = 4

	ReadOnly         = Read
	ReadWrite        = Read | Write
	ReadExecute      = Read | Execute
	ReadWriteExecute = Read | Write | Execute
)

// Readable reports whether p grants read access.
func (p Protection) Readable() bool {
	return p&Read != 0
}

// Writable reports whether p grants write access.
func (p Protection) Writable() bool {
	return p&Write != 0
}

// Executable reports whether p grants execute access.
func (p Protection) Executable() bool {
	return p&Execute != 0
}

// String renders p in the notation used by /proc/self/maps, e.g. "r-x".
func (p Protection) String() string {
	b := []byte("---")
	if p.Readable() {
		b[0] = 'r'
	}

	if p.Writable() {
		b[1] = 'w'
	}

	if p.Executable() {
		b[2] = 'x'
	}

	return string(b)
}

// ParseProtection parses the three character notation produced by Protection.String.
func ParseProtection(s string) (Protection, error) {
	if len(s) != 3 {
		return None, errors.Errorf("invalid protection %q", s)
	}

	var p Protection

	for i, want := range []struct {
		c    byte
		flag Protection
	}{{'r', Read}, {'w', Write}, {'x', Execute}} {
		switch s[i] {
		case want.c:
			p |= want.flag
		case '-':
		default:
			return None, errors.Errorf("invalid protection %q", s)
		}
	}

	return p, nil
}
