package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the adderc version number",
		Run: runFunc(func(cmd *cobra.Command, args []string) error {
			fmt.Printf("adderc version %s\n", version)
			return nil
		}),
	}
}
