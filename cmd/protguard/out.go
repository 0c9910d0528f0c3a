package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/TylerBrock/colorjson"
	"github.com/logrusorgru/aurora"
	"github.com/rcrowley/go-metrics"

	"github.com/vic4key/vmutils"
)

var (
	TitleColor = aurora.Cyan
	Formatter  = colorjson.NewFormatter()

	w = tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
)

func init() {
	Formatter.Indent = 4
}

func PrintTitle(name string) {
	fmt.Fprintln(w, aurora.Bold(TitleColor(name)))
}

func protectionColor(r vmutils.Region) aurora.Value {
	switch {
	case !r.IsMapped():
		return aurora.Red("free")
	case r.Protection.Executable() && r.Protection.Writable():
		return aurora.Magenta(r.Protection)
	case r.Protection.Writable():
		return aurora.Yellow(r.Protection)
	case r.Protection == vmutils.None:
		return aurora.Gray(12, r.Protection)
	default:
		return aurora.Green(r.Protection)
	}
}

// PrintRegions prints the regions covering r.
func PrintRegions(title string, r vmutils.Range) error {
	regions, err := regions(r)
	if err != nil {
		return err
	}

	PrintTitle(title)

	if regions == nil {
		fmt.Fprintf(w, "  %s\t%v\n", r, aurora.Gray(12, "region query not supported"))
	}

	for _, region := range regions {
		fmt.Fprintf(w, "  %s\t%v\t%d pages\n", region.Range(), protectionColor(region), region.Range().Len()/uintptr(os.Getpagesize()))
	}

	return w.Flush()
}

// PrintColoredJSON prints the metrics in the default registry.
func PrintColoredJSON(msg string) {
	b, err := json.Marshal(metrics.DefaultRegistry)
	if err != nil {
		panic(err)
	}

	var obj interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		panic(err)
	}

	PrintTitle(msg)

	if err := w.Flush(); err != nil {
		panic(err)
	}

	out, err := Formatter.Marshal(obj)
	if err != nil {
		panic(err)
	}

	fmt.Println()
	fmt.Println(string(out))
	fmt.Println()
}
