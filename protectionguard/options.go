package protectionguard

import "github.com/vic4key/vmutils"

// Option is used to configure a Guard at construction.
type Option func(*Guard)

// WithQuerier sets the Querier used to capture the regions covering a range. The default is query.Default.
func WithQuerier(q vmutils.Querier) Option {
	return func(g *Guard) {
		g.querier = q
	}
}

// WithProtector sets the Protector used to change and restore protection. The default is protect.Default.
func WithProtector(p vmutils.Protector) Option {
	return func(g *Guard) {
		g.protector = p
	}
}

// WithLegacyGapHandling makes NewWithStatus and NewRangeWithStatus treat unmapped memory the way earlier releases
// did: the status is set, but every region, including the unmapped ones, is still captured and the new protection
// is still applied to the whole range. It has no effect on New and NewRange.
func WithLegacyGapHandling() Option {
	return func(g *Guard) {
		g.legacyGap = true
	}
}
