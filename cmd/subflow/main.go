package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// errAborted marks a run stopped by the user; it maps to its own exit code
// so scripts can tell an abort from a failure.
var errAborted = errors.New("run aborted")

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errAborted) {
			os.Exit(2)
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
