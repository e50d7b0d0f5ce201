package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// minPython is the oldest interpreter the generated code is written for;
// it leans on nothing newer than f-string-era Python.
var minPython = semver.MustParse("3.6.0")

var pythonVersionRE = regexp.MustCompile(`(\d+\.\d+(\.\d+)?)`)

func newRunCmd() *cobra.Command {
	var allErrors bool
	cmd := &cobra.Command{
		Use:   "run <file" + sourceExt + ">",
		Short: "Compile an Adder program and execute it immediately",
		Args:  cobra.ExactArgs(1),
		Run: runFunc(func(cmd *cobra.Command, args []string) error {
			result, err := compileFile(args[0], allErrors)
			if err != nil {
				return err
			}
			python, err := findPython()
			if err != nil {
				return err
			}
			dir, err := os.MkdirTemp("", "adderc-run-")
			if err != nil {
				return errors.Wrap(err, "creating temp dir")
			}
			defer os.RemoveAll(dir)
			script := filepath.Join(dir, "main.py")
			if err := os.WriteFile(script, []byte(result.Output), 0644); err != nil {
				return errors.Wrapf(err, "writing %s", script)
			}
			run := exec.Command(python, script)
			run.Stdin = os.Stdin
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			if err := run.Run(); err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					// Propagate the program's own exit code. The deferred
					// cleanup must happen by hand since os.Exit skips it.
					os.RemoveAll(dir)
					glog.Flush()
					os.Exit(exitErr.ExitCode())
				}
				return errors.Wrapf(err, "running %s", python)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&allErrors, "all-errors", false, "Report every parse error instead of stopping at the first")
	return cmd
}

// findPython locates a python3 interpreter on PATH and verifies it is
// recent enough for the generated code.
func findPython() (string, error) {
	var python string
	for _, name := range []string{"python3", "python"} {
		if path, err := exec.LookPath(name); err == nil {
			python = path
			break
		}
	}
	if python == "" {
		return "", errors.New("no python3 interpreter found in PATH")
	}
	out, err := exec.Command(python, "--version").CombinedOutput()
	if err != nil {
		return "", errors.Wrapf(err, "checking %s version", python)
	}
	match := pythonVersionRE.FindString(string(out))
	if match == "" {
		return "", errors.Errorf("cannot tell the python version from %q", strings.TrimSpace(string(out)))
	}
	version, err := semver.NewVersion(match)
	if err != nil {
		return "", errors.Wrapf(err, "parsing python version %q", match)
	}
	if version.LessThan(minPython) {
		return "", errors.Errorf("python %s is too old, need at least %s", version, minPython)
	}
	return python, nil
}
