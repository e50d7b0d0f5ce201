package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adder-lang/adder/compiler"
)

const sourceExt = ".ad"

func newBuildCmd() *cobra.Command {
	var output string
	var launcher bool
	var dump bool
	var allErrors bool
	cmd := &cobra.Command{
		Use:   "build <file" + sourceExt + ">",
		Short: "Compile an Adder source file to Python 3",
		Args:  cobra.ExactArgs(1),
		Run: runFunc(func(cmd *cobra.Command, args []string) error {
			path := args[0]
			result, err := compileFile(path, allErrors)
			if err != nil {
				return err
			}
			if dump {
				printStages(result)
			}
			out := output
			if out == "" {
				out = defaultOutput(path)
			}
			if err := os.WriteFile(out, []byte(result.Output), 0644); err != nil {
				return errors.Wrapf(err, "writing %s", out)
			}
			if launcher {
				return writeLauncher(out)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to the source name with .py)")
	cmd.Flags().BoolVar(&launcher, "launcher", false, "Also write an executable shell launcher next to the output")
	cmd.Flags().BoolVar(&dump, "dump", false, "Print tokens, AST, symbol table, and IR before writing the output")
	cmd.Flags().BoolVar(&allErrors, "all-errors", false, "Report every parse error instead of stopping at the first")
	return cmd
}

func compileFile(path string, allErrors bool) (*compiler.Result, error) {
	if filepath.Ext(path) != sourceExt {
		return nil, errors.Errorf("%s: source files must end in %s", path, sourceExt)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return compiler.Compile(string(src), compiler.Options{CollectParseErrors: allErrors})
}

func defaultOutput(path string) string {
	return strings.TrimSuffix(path, sourceExt) + ".py"
}

func printStages(result *compiler.Result) {
	fmt.Println("== tokens ==")
	for _, token := range result.Tokens {
		fmt.Println(token)
	}
	fmt.Println("== ast ==")
	fmt.Print(result.Program.Dump())
	fmt.Println("== symbols ==")
	fmt.Print(result.SymbolTable)
	fmt.Println("== ir ==")
	fmt.Print(result.IR.Dump())
}

// writeLauncher drops an executable shell script next to the generated
// python file, so the program can be started without naming the
// interpreter.
func writeLauncher(pyPath string) error {
	abs, err := filepath.Abs(pyPath)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", pyPath)
	}
	launcherPath := strings.TrimSuffix(pyPath, ".py") + ".sh"
	script := fmt.Sprintf("#!/bin/sh\nexec python3 %s \"$@\"\n", abs)
	if err := os.WriteFile(launcherPath, []byte(script), 0755); err != nil {
		return errors.Wrapf(err, "writing %s", launcherPath)
	}
	return nil
}
