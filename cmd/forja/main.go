// Package main provides the entry point for the forja CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrz1836/forja/internal/cli"
	"github.com/mrz1836/forja/internal/errors"
)

// Set via ldflags at build time.
//
//nolint:gochecknoglobals // build metadata
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err != nil {
		msg, action := errors.Actionable(err)
		_, _ = fmt.Fprintln(os.Stderr, "Error:", msg)
		if action != "" {
			_, _ = fmt.Fprintln(os.Stderr, action)
		}
	}
	os.Exit(cli.ExitCodeForError(err))
}
