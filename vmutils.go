package vmutils

import (
	"github.com/rcrowley/go-metrics"
)

var (
	// AcquireCounter is used to track cumulative guard acquisitions.
	//
	// AcquireCounter increases every time a guard is handed to a caller, but
	// unlike ActiveCounter, it does not decrease as guards are closed.
	AcquireCounter = metrics.GetOrRegisterCounter("vmutils.guard.acquired", nil)

	// ActiveCounter is used to track the number of guards currently open.
	//
	// ActiveCounter increases as guards are handed to callers and decreases
	// as guards are closed.
	ActiveCounter = metrics.GetOrRegisterCounter("vmutils.guard.active", nil)

	// RestoreFailureCounter counts regions a guard failed to restore while closing.
	RestoreFailureCounter = metrics.GetOrRegisterCounter("vmutils.guard.restore.failed", nil)

	// LeakCounter counts guards that were garbage collected while still owing a restore.
	LeakCounter = metrics.GetOrRegisterCounter("vmutils.guard.leaked", nil)
)

type vmError string

func (e vmError) Error() string {
	return string(e)
}

const (
	// ErrInvalidRange is returned when the end of an address range lies before its beginning.
	ErrInvalidRange vmError = "invalid address range"

	// ErrUnsupported is returned by collaborators that have no implementation for the current platform.
	ErrUnsupported vmError = "operation not supported on this platform"
)

// Querier enumerates the memory regions covering an address range.
type Querier interface {
	// Query returns the regions covering [begin, end) in ascending address order.
	// Sub-ranges that are not backed by any mapping are returned as regions for
	// which IsMapped reports false.
	Query(begin, end uintptr) ([]Region, error)
}

// Protector changes the access protection of an address range.
type Protector interface {
	// Protect sets the protection of [begin, end) to prot.
	Protect(begin, end uintptr, prot Protection) error
}

// QuerierFunc adapts an ordinary function to the Querier interface.
type QuerierFunc func(begin, end uintptr) ([]Region, error)

// Query calls f(begin, end).
func (f QuerierFunc) Query(begin, end uintptr) ([]Region, error) {
	return f(begin, end)
}

// ProtectorFunc adapts an ordinary function to the Protector interface.
type ProtectorFunc func(begin, end uintptr, prot Protection) error

// Protect calls f(begin, end, prot).
func (f ProtectorFunc) Protect(begin, end uintptr, prot Protection) error {
	return f(begin, end, prot)
}
