package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "watch <file" + sourceExt + ">",
		Short: "Rebuild the output whenever the source file changes",
		Args:  cobra.ExactArgs(1),
		Run: runFunc(func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := output
			if out == "" {
				out = defaultOutput(path)
			}
			// A broken build keeps the watch alive; the next save gets
			// another chance. Error collection stays on so a batch of
			// syntax errors shows up in one pass.
			rebuild := func() {
				result, err := compileFile(path, true)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
					return
				}
				if err := os.WriteFile(out, []byte(result.Output), 0644); err != nil {
					fmt.Fprintf(os.Stderr, "error: %s\n", errorMessage(err))
					return
				}
				fmt.Printf("built %s\n", out)
			}
			rebuild()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return errors.Wrap(err, "creating watcher")
			}
			defer watcher.Close()
			abs, err := filepath.Abs(path)
			if err != nil {
				return errors.Wrapf(err, "resolving %s", path)
			}
			// Watch the directory rather than the file: editors that save
			// by renaming a temp file over the source would otherwise
			// detach the watch after the first change.
			if err := watcher.Add(filepath.Dir(abs)); err != nil {
				return errors.Wrapf(err, "watching %s", filepath.Dir(abs))
			}

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					target, err := filepath.Abs(event.Name)
					if err != nil || target != abs {
						continue
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						rebuild()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stderr, "watch error: %s\n", err)
				case <-interrupt:
					return nil
				}
			}
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to the source name with .py)")
	return cmd
}
