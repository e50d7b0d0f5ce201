package main

import (
	"flag"
	"strconv"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var logToStderr bool
	var verbose int
	cmd := &cobra.Command{
		Use:           "adderc",
		Short:         "adderc compiles Adder programs to Python 3",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(logToStderr, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
	}

	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(
		&verbose, "verbose", "v", 0, "Enable verbose logging (e.g., v=3); anything >3 is very verbose")

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// initLogging ensures glog has been initialized, including calling
// flag.Parse beforehand. Poking the flags below is the only way to
// configure the library.
func initLogging(logToStderr bool, verbose int) {
	flag.Parse()
	if logToStderr {
		flag.Lookup("logtostderr").Value.Set("true")
	}
	if verbose > 0 {
		flag.Lookup("v").Value.Set(strconv.Itoa(verbose))
	}
}
