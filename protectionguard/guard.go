// Package protectionguard implements scoped changes of memory protection.
//
// A Guard records the protection of every region covering an address range, changes the protection of the range
// and puts the recorded protection back when it is restored or closed. Every guard handed out must be closed;
// a guard dropped without Close leaves the changed protection in place for good.
//
// Guards do no locking. Other goroutines, or other guards, changing the protection of overlapping ranges between
// acquisition and restoration will have their changes overwritten; callers must serialize such use.
package protectionguard

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"

	"github.com/vic4key/vmutils"
	"github.com/vic4key/vmutils/log"
	"github.com/vic4key/vmutils/protect"
	"github.com/vic4key/vmutils/query"
)

var (
	// AcquireTimer is used to record the time taken to capture and change the protection of a range.
	AcquireTimer = metrics.GetOrRegisterTimer("vmutils.protectionguard.acquiretimer", nil)

	// RestoreTimer is used to record the time taken by explicit restores.
	RestoreTimer = metrics.GetOrRegisterTimer("vmutils.protectionguard.restoretimer", nil)
)

type guardError string

func (e guardError) Error() string {
	return string(e)
}

const (
	// ErrFreeMemory is matched by errors reporting that part of a range is not mapped.
	ErrFreeMemory guardError = "attempt to protect free memory"

	// ErrCopied is returned when a method is called on a copy of a Guard.
	ErrCopied guardError = "guard has been copied by value"
)

// GapError reports a sub-range without any backing mapping inside the range a guard was asked to protect.
//
// It matches both ErrFreeMemory and syscall.EPERM with errors.Is.
type GapError struct {
	Begin uintptr
	End   uintptr
}

func (e *GapError) Error() string {
	return fmt.Sprintf("%s %s", ErrFreeMemory, vmutils.Range{Begin: e.Begin, End: e.End})
}

// Is reports whether target is ErrFreeMemory or syscall.EPERM.
func (e *GapError) Is(target error) bool {
	return target == ErrFreeMemory || target == syscall.EPERM
}

// noCopy may be embedded into structs which must not be copied after the first use.
// See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Guard owns the obligation to restore the protection it changed. It must not be copied; use the *Guard returned
// by the constructors.
type Guard struct {
	//nolint:unused,structcheck // Only read by go vet's copylocks check.
	noCopy noCopy

	addr      *Guard
	querier   vmutils.Querier
	protector vmutils.Protector
	legacyGap bool

	u *undo
}

// undo holds the captured regions. It lives apart from Guard so the leak finalizer can inspect it without keeping
// the guard reachable.
type undo struct {
	regions []vmutils.Region
	closed  bool

	// stack is the stack trace of the guard's creation, only set if log.DebugEnabled.
	stack []byte
}

func (u *undo) finalize() {
	if u.closed || len(u.regions) == 0 {
		return
	}

	vmutils.LeakCounter.Inc(1)
	log.Debugf("guard finalized before closed, %d region(s) left unrestored\n%s", len(u.regions), u.stack)
}

func newGuard(opts []Option) *Guard {
	g := &Guard{
		querier:   query.Default,
		protector: protect.Default,
		u:         new(undo),
	}
	g.addr = g

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// track registers g as handed to a caller.
func (g *Guard) track() {
	vmutils.AcquireCounter.Inc(1)
	vmutils.ActiveCounter.Inc(1)

	if log.DebugEnabled() {
		g.u.stack = debug.Stack()
	}

	runtime.SetFinalizer(g.u, (*undo).finalize)
}

// sink receives the failures of acquire and decides whether acquisition carries on.
type sink interface {
	report(err error) (proceed bool)
}

// propagate stops at the first failure and keeps it for the caller to return.
type propagate struct {
	err error
}

func (p *propagate) report(err error) bool {
	p.err = err

	return false
}

// status records failures in a caller-supplied Status.
type status struct {
	st        *vmutils.Status
	legacyGap bool
}

func (s status) report(err error) bool {
	s.st.Set(err)

	var gap *GapError

	return s.legacyGap && errors.As(err, &gap)
}

// acquire captures the regions covering [begin, end) and, only once all of them have been captured, changes the
// protection of the range to prot.
func (g *Guard) acquire(begin, end uintptr, prot vmutils.Protection, s sink) {
	defer AcquireTimer.UpdateSince(time.Now())

	if end < begin {
		s.report(errors.WithStack(vmutils.ErrInvalidRange))
		return
	}

	regions, err := g.querier.Query(begin, end)
	if err != nil {
		s.report(errors.WithMessage(err, "unable to query memory regions"))
		return
	}

	captured := make([]vmutils.Region, 0, len(regions))

	for _, r := range regions {
		if !r.IsMapped() && !s.report(errors.WithStack(&GapError{Begin: r.Begin, End: r.End})) {
			return
		}

		captured = append(captured, r)
	}

	g.u.regions = captured

	if err := g.protector.Protect(begin, end, prot); err != nil {
		s.report(errors.WithMessagef(err, "unable to mark %s as %s", vmutils.Range{Begin: begin, End: end}, prot))
	}
}

// New changes the protection of [begin, end) to prot and returns a guard owing the restoration of the previous
// protection.
//
// On error no guard is returned and the protection of the range is left as it was: a range containing unmapped
// memory fails with an error matching ErrFreeMemory before anything is changed, and if changing the protection
// fails the captured protection is put back before returning.
func New(begin, end uintptr, prot vmutils.Protection, opts ...Option) (*Guard, error) {
	g := newGuard(opts)

	var p propagate

	g.acquire(begin, end, prot, &p)

	if p.err != nil {
		// Only a failed protection change leaves captured regions behind.
		g.restoreAll()

		return nil, p.err
	}

	g.track()

	return g, nil
}

// NewRange is New for the bounds of r.
func NewRange(r vmutils.Ranger, prot vmutils.Protection, opts ...Option) (*Guard, error) {
	begin, end := r.Bounds()

	return New(begin, end, prot, opts...)
}

// NewWithStatus is New reporting failure through st instead of an error. It always returns a guard, which must
// be closed.
//
// If querying the regions fails, or the range contains unmapped memory, st is set and nothing is captured or
// changed. Unmapped memory sets an error matching syscall.EPERM and ErrFreeMemory. If changing the protection
// fails, st is set and the guard keeps the captured regions so that Close or Restore put them back.
//
// See WithLegacyGapHandling for the alternative treatment of unmapped memory.
func NewWithStatus(begin, end uintptr, prot vmutils.Protection, st *vmutils.Status, opts ...Option) *Guard {
	st.Reset()

	g := newGuard(opts)
	g.acquire(begin, end, prot, status{st: st, legacyGap: g.legacyGap})
	g.track()

	return g
}

// NewRangeWithStatus is NewWithStatus for the bounds of r.
func NewRangeWithStatus(r vmutils.Ranger, prot vmutils.Protection, st *vmutils.Status, opts ...Option) *Guard {
	begin, end := r.Bounds()

	return NewWithStatus(begin, end, prot, st, opts...)
}

func (g *Guard) check() error {
	if g.addr != nil && g.addr != g {
		return errors.WithStack(ErrCopied)
	}

	return nil
}

// Restore puts back the captured protection, most recently captured region first. Each region is forgotten as
// soon as its protection has been restored.
//
// Restore stops at the first failure and returns it; the failed region and those captured before it remain
// pending, so Restore may be retried and Close will still attempt them. Restoring a guard with nothing pending
// is a no-op.
func (g *Guard) Restore() error {
	if err := g.check(); err != nil {
		return err
	}

	if g.Len() == 0 {
		return nil
	}

	defer RestoreTimer.UpdateSince(time.Now())

	for len(g.u.regions) > 0 {
		last := len(g.u.regions) - 1
		r := g.u.regions[last]

		if err := g.protector.Protect(r.Begin, r.End, r.Protection); err != nil {
			return errors.WithMessagef(err, "unable to restore %s", r)
		}

		g.u.regions = g.u.regions[:last]
	}

	return nil
}

// RestoreWithStatus is Restore reporting failure through st.
func (g *Guard) RestoreWithStatus(st *vmutils.Status) {
	st.Reset()
	st.Set(g.Restore())
}

// restoreAll puts every pending region back in capture order, ignoring failures, and forgets them.
func (g *Guard) restoreAll() {
	for _, r := range g.u.regions {
		if err := g.protector.Protect(r.Begin, r.End, r.Protection); err != nil {
			vmutils.RestoreFailureCounter.Inc(1)
			log.Debugf("unable to restore %s: %v\n", r, err)
		}
	}

	g.u.regions = nil
}

// Close puts back the protection of every pending region in the order they were captured and releases the guard.
// Failures are not reported; Close never fails and is safe to defer. Use Restore first if failures matter.
//
// Calling Close more than once is a no-op.
func (g *Guard) Close() {
	if g == nil || g.u == nil {
		return
	}

	if err := g.check(); err != nil {
		log.Debugf("close ignored: %v\n", err)
		return
	}

	if g.u.closed {
		return
	}

	g.restoreAll()
	g.u.closed = true

	runtime.SetFinalizer(g.u, nil)
	vmutils.ActiveCounter.Dec(1)
}

// IsClosed returns true if the guard has already been closed.
func (g *Guard) IsClosed() bool {
	return g.u != nil && g.u.closed
}

// Len returns the number of regions still waiting to be restored. A copy of a guard owes nothing and reports 0.
func (g *Guard) Len() int {
	if g.u == nil || g.check() != nil {
		return 0
	}

	return len(g.u.regions)
}

// Pending returns a copy of the regions still waiting to be restored, in capture order. A copy of a guard reports
// nothing pending.
func (g *Guard) Pending() []vmutils.Region {
	if g.Len() == 0 {
		return nil
	}

	return append([]vmutils.Region(nil), g.u.regions...)
}

// Do changes the protection of [begin, end) to prot for the duration of action.
//
// In the event of multiple errors, e.g., action returns a non-nil error and restoring the protection fails too,
// the errors are wrapped in a single error and the new composite error is returned.
func Do(begin, end uintptr, prot vmutils.Protection, action func() error, opts ...Option) (err error) {
	g, err := New(begin, end, prot, opts...)
	if err != nil {
		return err
	}

	defer g.Close()

	defer func() {
		if err2 := g.Restore(); err2 != nil {
			if err == nil {
				err = err2
				return
			}

			err = errors.WithMessage(err, err2.Error())
		}
	}()

	return action()
}
