/*
Package vmutils provides a way for applications to temporarily change the access protection of a range of their own
memory, e.g. to patch code or data, and to put the previous protection back afterwards.

	package main

	import (
		"github.com/vic4key/vmutils"
		"github.com/vic4key/vmutils/protectionguard"
	)

	func main() {
		r := vmutils.RangeOf(codeToPatch())

		guard, err := protectionguard.NewRange(r, vmutils.ReadWriteExecute)
		if err != nil {
			panic("unexpected error!")
		}
		defer guard.Close()

		applyPatch()

		if err := guard.Restore(); err != nil {
			panic("unexpected error!")
		}
	}

The root package holds the value types shared by the query, protect and protectionguard packages.
*/
package vmutils
