// Command protguard demonstrates protection guards on a scratch allocation. It maps a few pages, gives each page
// its own protection, changes the protection of the whole allocation with a guard and prints the region map
// before, during and after the guard.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"

	"github.com/vic4key/vmutils"
	"github.com/vic4key/vmutils/internal/memcall"
	vmlog "github.com/vic4key/vmutils/log"
	"github.com/vic4key/vmutils/protect"
	"github.com/vic4key/vmutils/protectionguard"
	"github.com/vic4key/vmutils/query"
)

type Options struct {
	Layout     string `short:"l" long:"layout" default:"r--,rw-,r--" description:"Comma separated initial protection of each page."`
	Protection string `short:"p" long:"protection" default:"rwx" description:"Protection to apply while the guard is held."`
	Explicit   bool   `short:"e" long:"explicit" description:"Restore explicitly with Restore before closing the guard."`
	Status     bool   `short:"s" long:"status" description:"Use the status reporting constructor and restore."`
	Legacy     bool   `long:"legacy" description:"Enable legacy gap handling for the status constructor."`
	Hole       bool   `long:"hole" description:"Unmap the middle page before acquiring the guard."`
	Verbose    bool   `short:"v" long:"verbose" description:"Enables debug logging to stderr."`
	Metrics    bool   `short:"m" long:"metrics" description:"Dumps metrics to stdout in JSON format."`
}

var opts Options

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return
		}

		os.Exit(1)
	}

	if opts.Verbose {
		vmlog.SetLogger(vmlog.Func(log.Printf))
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, aurora.Red(fmt.Sprintf("%+v", err)))
		os.Exit(1)
	}

	if opts.Metrics {
		PrintColoredJSON("Metrics:")
	}
}

func parseLayout(s string) ([]vmutils.Protection, error) {
	var layout []vmutils.Protection

	for _, field := range strings.Split(s, ",") {
		prot, err := vmutils.ParseProtection(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}

		layout = append(layout, prot)
	}

	return layout, nil
}

func run() error {
	layout, err := parseLayout(opts.Layout)
	if err != nil {
		return err
	}

	prot, err := vmutils.ParseProtection(opts.Protection)
	if err != nil {
		return err
	}

	ps := protect.PageSize()

	b, err := memcall.Default.Alloc(len(layout) * int(ps))
	if err != nil {
		return errors.WithMessage(err, "unable to allocate scratch pages")
	}

	r := vmutils.RangeOf(b)
	holed := false

	defer func() {
		if err := release(b, holed); err != nil {
			log.Printf("unable to release scratch pages: %v", err)
		}
	}()

	for i, p := range layout {
		page := r.Begin + uintptr(i)*ps
		if err := protect.Protect(page, page+ps, p); err != nil {
			return err
		}
	}

	if opts.Hole {
		if len(layout) < 3 {
			return errors.New("--hole needs a layout of at least three pages")
		}

		middle := r.Begin + uintptr(len(layout)/2)*ps
		if err := punch(middle, ps); err != nil {
			return errors.WithMessage(err, "unable to unmap the middle page")
		}

		holed = true
	}

	if err := PrintRegions("Before:", r); err != nil {
		return err
	}

	var guard *protectionguard.Guard

	var guardOpts []protectionguard.Option
	if opts.Legacy {
		guardOpts = append(guardOpts, protectionguard.WithLegacyGapHandling())
	}

	if opts.Status {
		var st vmutils.Status

		guard = protectionguard.NewRangeWithStatus(r, prot, &st, guardOpts...)
		if !st.OK() {
			fmt.Println(aurora.Yellow(fmt.Sprintf("status: %v", st.Err())))
		}
	} else {
		guard, err = protectionguard.NewRange(r, prot, guardOpts...)
		if err != nil {
			return err
		}
	}

	defer guard.Close()

	if err := PrintRegions(fmt.Sprintf("Guarded (%s, %d pending):", prot, guard.Len()), r); err != nil {
		return err
	}

	if opts.Explicit {
		if opts.Status {
			var st vmutils.Status

			guard.RestoreWithStatus(&st)
			if !st.OK() {
				fmt.Println(aurora.Yellow(fmt.Sprintf("status: %v", st.Err())))
			}
		} else if err := guard.Restore(); err != nil {
			return err
		}
	}

	guard.Close()

	return PrintRegions("After:", r)
}

// regions queries r, falling back to a single unknown region on platforms without a region query.
func regions(r vmutils.Range) ([]vmutils.Region, error) {
	regions, err := query.Query(r.Begin, r.End)
	if errors.Is(err, vmutils.ErrUnsupported) {
		return nil, nil
	}

	return regions, err
}
