package main

import (
	"flag"

	"github.com/plan-systems/klog"
)

// klogFlags holds klog's settings so --verbosity can adjust them after parsing.
var klogFlags *flag.FlagSet

func main() {
	klogFlags = flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	klogFlags.Set("logtostderr", "true")
	klogFlags.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	Execute()

	klog.Flush()
}
