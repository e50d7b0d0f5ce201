package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

// runFunc wraps an error-returning handler so every failure leaves
// through one exit path instead of cobra's default usage print. The
// detailed form of the error, stack trace included, goes to the verbose
// log only.
func runFunc(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := run(cmd, args); err != nil {
			glog.V(3).Infof("%+v", err)
			fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
			glog.Flush()
			os.Exit(1)
		}
	}
}

// errorMessage flattens collected parse errors into a numbered list; a
// collection of one reads like a plain error.
func errorMessage(err error) string {
	if multi, ok := err.(*multierror.Error); ok {
		wrapped := multi.WrappedErrors()
		if len(wrapped) == 1 {
			return errorMessage(wrapped[0])
		}
		msg := fmt.Sprintf("%d errors occurred:", len(wrapped))
		for i, werr := range wrapped {
			msg += fmt.Sprintf("\n    %d) %s", i+1, errorMessage(werr))
		}
		return msg
	}
	return err.Error()
}
