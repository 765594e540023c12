package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/spf13/cobra"

	_ "github.com/go-python/gpython/stdlib"
	_ "github.com/stevenktruong/graph-expansion/pygexp"
)

var runCmd = &cobra.Command{
	Use:   "run [script.py]",
	Short: "Run a gpython script with the gexp module, or start a REPL",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runREPL()
		}
		return RunScript(args[0], nil, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runREPL() error {
	ctx := py.NewContext(py.DefaultContextOpts())
	replCtx := repl.New(ctx)
	cli.RunREPL(replCtx)
	ctx.Close()
	<-ctx.Done()
	return nil
}

// RunScript runs the script at pathname.  If stdout is set, the script's
// print() output goes there.
func RunScript(pathname string, stdout *os.File, out io.Writer) error {
	ctx := py.NewContext(py.DefaultContextOpts())
	if stdout != nil {
		sys := ctx.Store().MustGetModule("sys")
		sys.Globals["stdout"] = &py.File{
			File:     stdout,
			FileMode: py.FileWrite,
		}
	}

	startTime := time.Now()
	fmt.Fprintf(out, "<<<>>>   executing '%s'   <<<>>>\n", pathname)

	_, err := py.RunFile(ctx, pathname, py.CompileOpts{}, nil)
	if err == nil {
		elapsed := time.Since(startTime)
		fmt.Fprintf(out, "<<<>>>   execution complete: %v   <<<>>>\n", elapsed)
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
		return err
	}
	return nil
}
